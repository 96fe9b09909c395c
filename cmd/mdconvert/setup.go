package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	mdconvert "github.com/alnah/go-mdconvert"
	"github.com/alnah/go-mdconvert/internal/config"
	"github.com/alnah/go-mdconvert/internal/fileutil"
	"github.com/alnah/go-mdconvert/internal/hints"
	"github.com/alnah/go-mdconvert/internal/htmlrender"
)

// session is the state shared by conversion commands.
type session struct {
	cfg    *config.Config
	envCfg *envConfig
	conv   *mdconvert.Converter
}

// loadConfig resolves the configuration. An explicit path (flag, then
// MDCONVERT_CONFIG) must exist; every other candidate is optional.
// Skipped candidates are reported on w.
func loadConfig(flagPath string, envCfg *envConfig, env *Environment, w io.Writer) (*config.Config, error) {
	explicit := flagPath
	if explicit == "" {
		explicit = envCfg.ConfigPath
	}
	if explicit != "" && !fileutil.FileExists(env.Fs, explicit) {
		return nil, fmt.Errorf("%w: %s%s", config.ErrConfigNotFound, explicit, hints.ForConfigNotFound([]string{explicit}))
	}

	resolver := &config.Resolver{Fs: env.Fs, Paths: config.SearchPaths(explicit)}
	cfg, warnings := resolver.Resolve()
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %s%s\n", warn, hints.ForConfigParse(warn.Path))
	}
	return cfg, nil
}

// newSession loads config, applies env vars and flags in precedence order,
// and builds the converter.
func newSession(common commonFlags, rt runtimeFlags, env *Environment) (*session, error) {
	envCfg := loadEnvConfig()

	cfg, err := loadConfig(common.config, envCfg, env, stderrOrDiscard(env.Stderr, common.quiet))
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	applyRuntimeFlags(&rt, cfg)

	timeout, err := resolveTimeout(rt.timeout, envCfg)
	if err != nil {
		return nil, err
	}

	conv, err := newConverter(cfg, envCfg, timeout, env, common.verbose)
	if err != nil {
		return nil, withHint(err, envCfg)
	}
	return &session{cfg: cfg, envCfg: envCfg, conv: conv}, nil
}

func newConverter(cfg *config.Config, envCfg *envConfig, timeout time.Duration, env *Environment, verbose bool) (*mdconvert.Converter, error) {
	opts := []mdconvert.Option{
		mdconvert.WithConfig(cfg),
		mdconvert.WithFs(env.Fs),
		mdconvert.WithRunner(env.Runner),
		mdconvert.WithOpener(env.Opener),
		mdconvert.WithLookPath(env.LookPath),
		mdconvert.WithNow(env.Now),
		mdconvert.WithLogger(newLogger(env.Stderr, verbose)),
		mdconvert.WithPandoc(envCfg.Pandoc),
		mdconvert.WithCompiler(envCfg.Compiler),
		mdconvert.WithTimeout(timeout),
	}
	if env.WorkDir != "" {
		opts = append(opts, mdconvert.WithWorkDir(env.WorkDir))
	}
	return mdconvert.NewConverter(opts...)
}

// convert runs one request and returns the result. The error carries hints.
func (s *session) convert(ctx context.Context, req mdconvert.Request) (*mdconvert.Result, error) {
	res, err := s.conv.Convert(ctx, req)
	if err != nil {
		return res, withHint(err, s.envCfg)
	}
	return res, nil
}

// compilerMissing reports whether LaTeX output will skip PDF compilation
// because pdflatex cannot be found.
func (s *session) compilerMissing(env *Environment) bool {
	if !s.cfg.LaTeX.CompilePDF {
		return false
	}
	name := s.envCfg.Compiler
	if name == "" {
		name = mdconvert.DefaultCompiler
	}
	_, err := env.LookPath(name)
	return err != nil
}

// withHint appends an actionable hint to err when one applies.
func withHint(err error, envCfg *envConfig) error {
	var hint string
	switch {
	case errors.Is(err, mdconvert.ErrConverterNotFound):
		hint = hints.ForPandocNotFound(envCfg.Pandoc != "")
	case errors.Is(err, mdconvert.ErrOutputDir):
		hint = hints.ForOutputDirectory()
	case errors.Is(err, context.DeadlineExceeded):
		hint = hints.ForTimeout()
	case errors.Is(err, htmlrender.ErrUnknownStyle):
		hint = hints.ForStyleNotFound(htmlrender.Styles())
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}

// printResult reports the produced artifacts.
func printResult(w io.Writer, format mdconvert.Format, res *mdconvert.Result) {
	fmt.Fprintf(w, "%s created: %s\n", format.Label(), res.OutputPath)
	if res.PDFPath != "" {
		fmt.Fprintf(w, "PDF created: %s\n", res.PDFPath)
	}
	if res.SourcePath != "" {
		fmt.Fprintf(w, "Markdown source saved: %s\n", res.SourcePath)
	}
}

// printWarnings reports failures of optional steps.
func printWarnings(w io.Writer, res *mdconvert.Result) {
	if res == nil {
		return
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}
