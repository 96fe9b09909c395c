package mdconvert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/alnah/go-mdconvert/internal/config"
	"github.com/alnah/go-mdconvert/internal/fileutil"
	"github.com/alnah/go-mdconvert/internal/htmlrender"
	"github.com/alnah/go-mdconvert/internal/naming"
	"github.com/alnah/go-mdconvert/internal/opener"
	"github.com/alnah/go-mdconvert/internal/process"
)

// Compile-time interface implementation checks.
var (
	_ Runner = ExecRunner{}
	_ Opener = (*opener.System)(nil)
	_ Opener = opener.Nop{}
)

// Converter orchestrates the two-stage conversion pipeline.
// Create with NewConverter and call Convert once per request.
type Converter struct {
	cfg        *config.Config
	fs         afero.Fs
	runner     Runner
	opener     Opener
	lookPath   func(string) (string, error)
	now        func() time.Time
	logger     *slog.Logger
	pandoc     string
	compiler   string
	outputRoot string
	rootSet    bool
	workDir    string
	timeout    time.Duration
	html       *htmlrender.Renderer
}

// NewConverter creates a Converter with the built-in configuration, the OS
// filesystem, real subprocesses and the platform opener.
// Returns error if the HTML renderer cannot be built from the configuration.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:      config.DefaultConfig(),
		fs:       afero.NewOsFs(),
		runner:   ExecRunner{},
		opener:   opener.NewSystem(),
		lookPath: process.LookPath,
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
		pandoc:   DefaultPandoc,
		compiler: DefaultCompiler,
	}

	for _, opt := range opts {
		opt(c)
	}

	if !c.rootSet {
		c.outputRoot = c.cfg.Global.OutputRoot
	}

	if c.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		c.workDir = wd
	}

	html, err := htmlrender.New(htmlrender.Options{
		HighlightStyle: c.cfg.HTML.HighlightStyle,
		HardWraps:      c.cfg.HTML.HardWraps,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing HTML renderer: %w", err)
	}
	c.html = html

	return c, nil
}

// Config returns the configuration the converter uses.
func (c *Converter) Config() *config.Config {
	return c.cfg
}

// OutputDir returns the directory artifacts of format f are written to.
func (c *Converter) OutputDir(f Format) string {
	if c.outputRoot == "" {
		return f.Dir()
	}
	return filepath.Join(c.outputRoot, f.Dir())
}

// Convert runs stage 1 and, for LaTeX, the optional stage 2, then the
// configured side effects. The returned Result is never nil. The error is
// non-nil exactly when no primary artifact was produced; it is also stored
// in Result.Err. Failures of optional steps only add warnings.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, req Request) (result *Result, err error) {
	result = &Result{Outcome: OutcomeStage1Failed}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
			*result = Result{Outcome: OutcomeStage1Failed, Warnings: result.Warnings, Err: err}
		}
	}()

	if err := c.convert(ctx, req, result); err != nil {
		result.Err = err
		result.OutputPath = ""
		result.Success = false
		result.Outcome = OutcomeStage1Failed
		return result, err
	}
	return result, nil
}

func (c *Converter) convert(ctx context.Context, req Request, res *Result) error {
	if strings.TrimSpace(req.Markdown) == "" {
		return ErrEmptyMarkdown
	}
	if req.Format.Dir() == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	dir := c.OutputDir(req.Format)
	if err := fileutil.EnsureDir(c.fs, dir); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputDir, err)
	}

	deriver := &naming.Deriver{
		Fs:         c.fs,
		Now:        c.now,
		DateFormat: c.cfg.Global.DateFormat,
		MaxWords:   c.cfg.Global.SlugWords,
	}
	output, err := deriver.Derive(dir, req.Format.Ext(), req.Slug, req.Markdown, c.siblings(req.Format)...)
	if err != nil {
		return err
	}

	log := c.logger.With("format", string(req.Format), "output", output)
	log.Info("converting")

	// Stage 1
	if req.Format.UsesPandoc() {
		err = c.pandocStage(ctx, req, output)
	} else {
		err = c.htmlStage(ctx, req, output)
	}
	if err != nil {
		log.Error("conversion failed", "error", err)
		return err
	}
	res.OutputPath = output
	res.Success = true
	res.Outcome = OutcomeStage1Only

	if c.cfg.Global.SaveMarkdownSource {
		c.saveSource(req.Markdown, res)
	}

	// Stage 2
	if req.Format == FormatLaTeX && c.cfg.LaTeX.CompilePDF {
		c.compileStage(ctx, res)
	}

	if c.cfg.Global.AutoOpenOutput {
		c.open(res)
	}

	for _, w := range res.Warnings {
		log.Warn(w)
	}
	log.Info("converted", "outcome", res.Outcome.String(), "pdf", res.PDFPath)
	return nil
}

// siblings lists the extensions the run may write next to the primary
// artifact. Their names are reserved together with it.
func (c *Converter) siblings(f Format) []string {
	var exts []string
	if c.cfg.Global.SaveMarkdownSource {
		exts = append(exts, "md")
	}
	if f == FormatLaTeX && c.cfg.LaTeX.CompilePDF {
		exts = append(exts, "pdf", compilerLogSuffix)
		exts = append(exts, compilerScratch...)
	}
	return exts
}

// saveSource writes the Markdown next to the primary artifact.
func (c *Converter) saveSource(markdown string, res *Result) {
	path := fileutil.SwapExt(res.OutputPath, "md")
	if err := fileutil.WriteFile(c.fs, path, markdown); err != nil {
		res.warn("could not save Markdown source: %v", err)
		return
	}
	res.SourcePath = path
}

// open hands every produced document to the opener. Files that vanished
// since they were produced are skipped.
func (c *Converter) open(res *Result) {
	if c.opener == nil {
		return
	}
	for _, p := range []string{res.OutputPath, res.PDFPath} {
		if p == "" || !fileutil.FileExists(c.fs, p) {
			continue
		}
		if err := c.opener.Open(p); err != nil {
			if errors.Is(err, opener.ErrNoOpener) {
				res.warn("could not open %s: no default-application opener available", p)
				return
			}
			res.warn("could not open %s: %v", p, err)
		}
	}
}
