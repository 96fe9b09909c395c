// Package pandoc builds pandoc command lines from format settings.
package pandoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-mdconvert/internal/config"
)

// ErrUnknownFormat is returned by BaseArgs for formats pandoc is not used for.
var ErrUnknownFormat = errors.New("no pandoc arguments for format")

// Pandoc target formats.
const (
	FormatPDF   = "pdf"
	FormatDOCX  = "docx"
	FormatLaTeX = "latex"
)

// Directive flags. Both spellings are recognized when scanning base arguments.
const (
	variableShort = "-V"
	variableLong  = "--variable"
)

// geometryPrefixes mark a variable value as a geometry directive.
var geometryPrefixes = []string{"geometry:", "geometry="}

// BaseArgs returns the fixed pandoc arguments for a target format, writing to output.
// Markdown is expected on stdin.
func BaseArgs(format, output string) ([]string, error) {
	switch strings.ToLower(format) {
	case FormatPDF:
		return []string{"-f", "markdown", "-V", "geometry:margin=1in", "-o", output}, nil
	case FormatDOCX:
		return []string{"-f", "markdown", "-t", "docx", "-o", output}, nil
	case FormatLaTeX:
		return []string{"-s", "-f", "markdown", "-t", "latex", "-V", "geometry:margin=1in", "-o", output}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Synthesize returns base extended with the directives described by section.
// A geometry directive already present in base is replaced in place; font and
// document class directives are appended. base is never modified.
func Synthesize(base []string, section config.FormatConfig) []string {
	args := make([]string, len(base), len(base)+8)
	copy(args, base)

	if section.Geometry != nil {
		if directive := GeometryDirective(*section.Geometry); directive != "" {
			if i := geometryIndex(args); i >= 0 {
				args[i] = directive
			} else {
				args = append(args, variableShort, directive)
			}
		}
	}

	if section.Font != nil {
		if section.Font.Family != "" {
			args = append(args, variableShort, "mainfont="+section.Font.Family)
		}
		if section.Font.Size != "" {
			args = append(args, variableShort, "fontsize="+section.Font.Size)
		}
	}

	if section.DocumentClass != "" {
		args = append(args, variableShort, "documentclass="+section.DocumentClass)
	}

	return args
}

// GeometryDirective encodes the set geometry fields as one variable value,
// e.g. "geometry:margin=1in,paper=letter". Returns "" when nothing is set.
func GeometryDirective(g config.GeometryConfig) string {
	var opts []string
	if g.Margin != "" {
		opts = append(opts, "margin="+g.Margin)
	}
	if g.Paper != "" {
		opts = append(opts, "paper="+g.Paper)
	}
	if len(opts) == 0 {
		return ""
	}
	return "geometry:" + strings.Join(opts, ",")
}

// geometryIndex returns the index of the value of the first geometry
// variable flag in args, or -1.
func geometryIndex(args []string) int {
	for i := 0; i+1 < len(args); i++ {
		if args[i] != variableShort && args[i] != variableLong {
			continue
		}
		if isGeometry(args[i+1]) {
			return i + 1
		}
	}
	return -1
}

func isGeometry(value string) bool {
	for _, p := range geometryPrefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// CountGeometry reports how many geometry directives args carries.
func CountGeometry(args []string) int {
	n := 0
	for i := 0; i+1 < len(args); i++ {
		if (args[i] == variableShort || args[i] == variableLong) && isGeometry(args[i+1]) {
			n++
		}
	}
	return n
}

// CompilerArgs returns the pdflatex arguments compiling texPath into outDir.
func CompilerArgs(texPath, outDir string) []string {
	return []string{"-interaction=nonstopmode", "-output-directory=" + outDir, texPath}
}
