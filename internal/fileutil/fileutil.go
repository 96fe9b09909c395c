// Package fileutil provides file and path helpers on top of an afero filesystem.
package fileutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---
	FilePermissions = 0o644 // rw-r--r--
)

// ValidateExtension checks that the extension is safe for use in generated file names.
// A leading dot is tolerated.
func ValidateExtension(extension string) error {
	extension = strings.TrimPrefix(extension, ".")
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// PathExists returns true if anything (file, directory, symlink target) exists at path.
func PathExists(fs afero.Fs, path string) bool {
	if path == "" {
		return false
	}
	_, err := fs.Stat(path)
	return err == nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(fs afero.Fs, path string) bool {
	if path == "" {
		return false
	}
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(fs afero.Fs, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := fs.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// WriteFile writes content to path, creating the file with FilePermissions.
func WriteFile(fs afero.Fs, path, content string) error {
	if err := afero.WriteFile(fs, path, []byte(content), FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SwapExt returns path with its extension replaced by ext ("pdf" or ".pdf").
//
// Examples:
//   - SwapExt("LaTeX/20250525.tex", "pdf") -> "LaTeX/20250525.pdf"
//   - SwapExt("PDF/20250525-1.pdf", ".md") -> "PDF/20250525-1.md"
//   - SwapExt("notes", "md") -> "notes.md"
func SwapExt(path, ext string) string {
	ext = "." + strings.TrimPrefix(ext, ".")
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// IsWritableDir reports whether a probe file can be created inside dir.
func IsWritableDir(fs afero.Fs, dir string) bool {
	f, err := afero.TempFile(fs, dir, ".mdconvert-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = fs.Remove(name)
	return true
}
