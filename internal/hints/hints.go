// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"

	"github.com/spf13/afero"

	"github.com/alnah/go-mdconvert/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists(afero.NewOsFs(), "/.dockerenv")
}

// ForPandocNotFound returns hints for a missing pandoc binary.
func ForPandocNotFound(envSet bool) string {
	var hints []string
	if IsInContainer() {
		hints = append(hints, "apt-get install -y pandoc")
	} else {
		hints = append(hints, "install pandoc from https://pandoc.org/installing.html")
	}
	if !envSet {
		hints = append(hints, "or set MDCONVERT_PANDOC to its path")
	}
	return formatHints(hints)
}

// ForCompilerNotFound returns hints for a missing pdflatex binary.
func ForCompilerNotFound(envSet bool) string {
	var hints []string
	if IsInContainer() {
		hints = append(hints, "apt-get install -y texlive-latex-base")
	} else {
		hints = append(hints, "install a TeX distribution (TeX Live, MacTeX, MiKTeX)")
	}
	if !envSet {
		hints = append(hints, "or set MDCONVERT_PDFLATEX to its path")
	}
	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating the first searched location with init.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	if len(searchedPaths) > 0 {
		hint += " or run 'mdconvert init " + searchedPaths[0] + "'"
	}
	return format(hint)
}

// ForConfigParse returns hints for a config file that cannot be used.
func ForConfigParse(path string) string {
	if path == "" {
		return ""
	}
	return format("run 'mdconvert config check " + path + "' for details")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable, or set MDCONVERT_OUTPUT_ROOT")
}

// ForStyleNotFound returns hints for highlight style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForOpener returns hints when files cannot be opened automatically.
func ForOpener() string {
	return format("install xdg-utils, or set MDCONVERT_NO_OPEN=1 to silence this")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, " "))
}
