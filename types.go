package mdconvert

import (
	"fmt"
	"strings"
)

// Format is an output format.
type Format string

// Supported output formats.
const (
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatLaTeX Format = "latex"
	FormatHTML  Format = "html"
)

// Formats lists the supported formats in menu order.
func Formats() []Format {
	return []Format{FormatPDF, FormatDOCX, FormatLaTeX, FormatHTML}
}

// ParseFormat accepts a format name case-insensitively. "tex" is an alias for latex.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDOCX, nil
	case "latex", "tex":
		return FormatLaTeX, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q (must be pdf, docx, latex, or html)", ErrUnsupportedFormat, s)
	}
}

// Dir returns the directory artifacts of this format are written to.
func (f Format) Dir() string {
	switch f {
	case FormatPDF:
		return "PDF"
	case FormatDOCX:
		return "DOCX"
	case FormatLaTeX:
		return "LaTeX"
	case FormatHTML:
		return "HTML"
	default:
		return ""
	}
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatLaTeX:
		return "tex"
	case FormatHTML:
		return "html"
	default:
		return ""
	}
}

// Label is the human-readable name shown in menus and messages.
func (f Format) Label() string {
	switch f {
	case FormatLaTeX:
		return "LaTeX"
	case FormatHTML, FormatPDF, FormatDOCX:
		return strings.ToUpper(string(f))
	default:
		return string(f)
	}
}

// UsesPandoc reports whether stage 1 runs the external converter.
func (f Format) UsesPandoc() bool {
	return f == FormatPDF || f == FormatDOCX || f == FormatLaTeX
}

// Request is one conversion.
type Request struct {
	Markdown string // Markdown content (required)
	Format   Format
	Slug     string // optional; overrides the content-derived slug
}

// Outcome is the terminal state of a conversion.
type Outcome int

const (
	// OutcomeStage1Failed means no artifact was produced.
	OutcomeStage1Failed Outcome = iota
	// OutcomeStage1Only means the primary artifact exists and no PDF was compiled.
	OutcomeStage1Only
	// OutcomeBothSucceeded means the LaTeX source and its compiled PDF both exist.
	OutcomeBothSucceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStage1Failed:
		return "stage1-failed"
	case OutcomeStage1Only:
		return "stage1-only"
	case OutcomeBothSucceeded:
		return "both-succeeded"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result reports which artifacts exist after a conversion.
type Result struct {
	OutputPath string   // primary artifact; empty unless Success
	Success    bool     // stage 1 produced OutputPath
	Outcome    Outcome  // terminal state
	PDFPath    string   // compiled PDF (LaTeX only); empty if not produced
	SourcePath string   // saved Markdown source; empty if not saved
	Warnings   []string // failures of optional steps
	Err        error    // stage-1 failure, nil on success
}

// Artifacts returns the paths of every file the conversion produced.
func (r *Result) Artifacts() []string {
	var paths []string
	for _, p := range []string{r.OutputPath, r.PDFPath, r.SourcePath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
