package mdconvert

import (
	"log/slog"
	"time"

	"github.com/spf13/afero"
)

// Option configures a Converter.
type Option func(*Converter)

// Default tool names looked up on PATH.
const (
	DefaultPandoc   = "pandoc"
	DefaultCompiler = "pdflatex"
)

// WithConfig sets the resolved configuration. The default is the built-in one.
func WithConfig(cfg *Config) Option {
	return func(c *Converter) {
		if cfg != nil {
			c.cfg = cfg
		}
	}
}

// WithRunner replaces the external process runner.
func WithRunner(r Runner) Option {
	return func(c *Converter) {
		c.runner = r
	}
}

// WithFs sets the filesystem used for naming, existence checks and writes.
func WithFs(fs afero.Fs) Option {
	return func(c *Converter) {
		c.fs = fs
	}
}

// WithNow sets the clock used for date stamps.
func WithNow(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// WithLogger sets the structured logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOpener sets how produced files are opened. A nil opener disables opening.
func WithOpener(o Opener) Option {
	return func(c *Converter) {
		c.opener = o
	}
}

// WithLookPath replaces PATH lookup for the external tools.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Converter) {
		c.lookPath = fn
	}
}

// WithPandoc sets the pandoc executable name or path.
func WithPandoc(path string) Option {
	return func(c *Converter) {
		if path != "" {
			c.pandoc = path
		}
	}
}

// WithCompiler sets the pdflatex executable name or path.
func WithCompiler(path string) Option {
	return func(c *Converter) {
		if path != "" {
			c.compiler = path
		}
	}
}

// WithOutputRoot sets the parent of the per-format directories,
// overriding global.output_root.
func WithOutputRoot(dir string) Option {
	return func(c *Converter) {
		c.outputRoot = dir
		c.rootSet = true
	}
}

// WithWorkDir sets the directory external tools run in; their scratch files land there.
func WithWorkDir(dir string) Option {
	return func(c *Converter) {
		c.workDir = dir
	}
}

// WithTimeout bounds each conversion. Zero means no timeout.
// Panics if d < 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d < 0 {
		panic("mdconvert: WithTimeout duration must not be negative")
	}
	return func(c *Converter) {
		c.timeout = d
	}
}
