package mdconvert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdconvert/internal/fileutil"
	"github.com/alnah/go-mdconvert/internal/pandoc"
	"github.com/alnah/go-mdconvert/internal/process"
)

// Invocation is one external tool run.
type Invocation struct {
	Path  string
	Args  []string
	Stdin string
	Dir   string
	Env   []string // added to the inherited environment
}

// ExitStatus is what the orchestrator observes from a finished tool.
type ExitStatus struct {
	Code   int
	Stderr string
}

// Runner executes external tools. A nonzero exit is reported in ExitStatus;
// the error is reserved for spawn failures and cancellation.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (ExitStatus, error)
}

// Opener opens a produced file with the user's default application.
type Opener interface {
	Open(path string) error
}

// ExecRunner runs tools as subprocesses in their own process group.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, inv Invocation) (ExitStatus, error) {
	st, err := process.Run(ctx, process.Command{
		Path:  inv.Path,
		Args:  inv.Args,
		Stdin: strings.NewReader(inv.Stdin),
		Dir:   inv.Dir,
		Env:   inv.Env,
	})
	return ExitStatus{Code: st.ExitCode, Stderr: st.Stderr}, err
}

// stderrLines bounds the stderr excerpt included in errors and warnings.
const stderrLines = 5

// scratch files pdflatex leaves next to the PDF.
var (
	compilerScratch   = []string{"aux", "out", "toc"}
	compilerLogSuffix = "log"
)

// pandocStage runs stage 1 for pandoc formats, writing to output.
func (c *Converter) pandocStage(ctx context.Context, req Request, output string) error {
	tool, err := c.lookPath(c.pandoc)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrConverterNotFound, c.pandoc)
	}

	base, err := pandoc.BaseArgs(string(req.Format), output)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	section, _ := c.cfg.Section(string(req.Format))
	args := pandoc.Synthesize(base, section)

	c.logger.Debug("running converter", "tool", tool, "args", args)
	st, err := c.runner.Run(ctx, Invocation{
		Path:  tool,
		Args:  args,
		Stdin: req.Markdown,
		Dir:   c.workDir,
		Env:   []string{"TMPDIR=" + c.workDir},
	})
	if err != nil {
		return fmt.Errorf("%w: running %s: %w", ErrConversionFailed, c.pandoc, err)
	}
	if st.Code != 0 {
		return fmt.Errorf("%w: %s exited with status %d%s", ErrConversionFailed, c.pandoc, st.Code, excerpt(st.Stderr))
	}
	if !fileutil.FileExists(c.fs, output) {
		return fmt.Errorf("%w: %s reported success but %s was not created", ErrConversionFailed, c.pandoc, output)
	}
	return nil
}

// htmlStage renders stage 1 for HTML in-process.
func (c *Converter) htmlStage(ctx context.Context, req Request, output string) error {
	doc, err := c.html.Render(ctx, req.Markdown)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if err := fileutil.WriteFile(c.fs, output, doc); err != nil {
		return fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	return nil
}

// compileStage runs stage 2 and records the outcome on res. It never fails
// the conversion: every problem becomes a warning.
func (c *Converter) compileStage(ctx context.Context, res *Result) {
	tool, err := c.lookPath(c.compiler)
	if err != nil {
		res.warn("%s not found; skipping PDF compilation", c.compiler)
		return
	}

	dir := filepath.Dir(res.OutputPath)
	pdfPath := fileutil.SwapExt(res.OutputPath, "pdf")
	args := pandoc.CompilerArgs(res.OutputPath, dir)

	c.logger.Debug("running compiler", "tool", tool, "args", args)
	st, runErr := c.runner.Run(ctx, Invocation{
		Path: tool,
		Args: args,
		Dir:  c.workDir,
		Env:  []string{"TMPDIR=" + c.workDir},
	})

	// pdflatex exits nonzero on recoverable warnings; the PDF decides.
	if fileutil.FileExists(c.fs, pdfPath) {
		res.PDFPath = pdfPath
		res.Outcome = OutcomeBothSucceeded
		if st.Code != 0 {
			c.logger.Warn("compiler exited nonzero but produced a PDF", "code", st.Code, "pdf", pdfPath)
		}
		c.removeScratch(res.OutputPath, true)
		return
	}

	switch {
	case runErr != nil:
		res.warn("PDF compilation failed: %v", runErr)
	default:
		res.warn("PDF compilation failed: %s exited with status %d%s", c.compiler, st.Code, excerpt(st.Stderr))
	}
	c.removeScratch(res.OutputPath, false)
}

// removeScratch deletes pdflatex auxiliary files. The log is kept when
// compilation failed.
func (c *Converter) removeScratch(texPath string, includeLog bool) {
	exts := compilerScratch
	if includeLog {
		exts = append(append([]string(nil), exts...), compilerLogSuffix)
	}
	for _, ext := range exts {
		p := fileutil.SwapExt(texPath, ext)
		if fileutil.FileExists(c.fs, p) {
			_ = c.fs.Remove(p)
		}
	}
}

// excerpt formats the last lines of a tool's stderr for an error message.
func excerpt(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	if len(lines) > stderrLines {
		lines = lines[len(lines)-stderrLines:]
	}
	return ": " + strings.Join(lines, "\n")
}
