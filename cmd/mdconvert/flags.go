package main

import (
	"fmt"
	"io"
	"slices"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdconvert/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// runtimeFlags holds flags that override config for a conversion session.
type runtimeFlags struct {
	outputRoot string
	timeout    string
	open       bool
	noOpen     bool
	saveSource bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	runtime runtimeFlags
	format  string
	slug    string
}

// interactiveFlags holds all flags for the interactive command.
type interactiveFlags struct {
	common  commonFlags
	runtime runtimeFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed logs")
}

// addRuntimeFlags adds config-override flags to a FlagSet.
func addRuntimeFlags(fs *flag.FlagSet, f *runtimeFlags) {
	fs.StringVarP(&f.outputRoot, "output-root", "o", "", "parent directory of PDF/, DOCX/, LaTeX/, HTML/")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-conversion timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.open, "open", false, "open produced files")
	fs.BoolVar(&f.noOpen, "no-open", false, "never open produced files")
	fs.BoolVar(&f.saveSource, "save-source", false, "save the Markdown next to the output")
}

// newFlagSet returns a FlagSet that reports errors to the caller instead of exiting.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseFlagSet parses args and wraps failures in ErrUsage.
// flag.ErrHelp stays detectable with errors.Is.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newFlagSet("convert", w, printConvertUsage)

	fs.StringVarP(&f.format, "format", "f", "pdf", "output format: pdf, docx, latex, html")
	fs.StringVarP(&f.slug, "slug", "s", "", "file name slug (default: first words of the document)")
	addCommonFlags(fs, &f.common)
	addRuntimeFlags(fs, &f.runtime)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func parseInteractiveFlags(args []string, w io.Writer) (*interactiveFlags, error) {
	f := &interactiveFlags{}
	fs := newFlagSet("interactive", w, printInteractiveUsage)

	addCommonFlags(fs, &f.common)
	addRuntimeFlags(fs, &f.runtime)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}

// applyRuntimeFlags applies explicitly set flags over the config.
func applyRuntimeFlags(f *runtimeFlags, cfg *config.Config) {
	if f.outputRoot != "" {
		cfg.Global.OutputRoot = f.outputRoot
	}
	if f.open {
		cfg.Global.AutoOpenOutput = true
	}
	if f.noOpen {
		cfg.Global.AutoOpenOutput = false
	}
	if f.saveSource {
		cfg.Global.SaveMarkdownSource = true
	}
}

// resolveTimeout returns the effective timeout: flag, then MDCONVERT_TIMEOUT,
// then none. An invalid flag value is a usage error.
func resolveTimeout(flagValue string, env *envConfig) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid timeout %q: %v", ErrUsage, flagValue, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrUsage, flagValue)
		}
		return d, nil
	}
	return env.Timeout, nil
}

// isVerbose reports whether args request verbose output, before any parsing.
// Used by main to configure GOMAXPROCS logging.
func isVerbose(args []string) bool {
	return slices.Contains(args, "--verbose") || slices.Contains(args, "-v")
}

// stderrOrDiscard returns w unless quiet is set.
func stderrOrDiscard(w io.Writer, quiet bool) io.Writer {
	if quiet {
		return io.Discard
	}
	return w
}
