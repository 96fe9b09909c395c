package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdconvert/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring config files.
type envConfig struct {
	ConfigPath string        // MDCONVERT_CONFIG: config file path
	OutputRoot string        // MDCONVERT_OUTPUT_ROOT: parent of PDF/, DOCX/, ...
	Pandoc     string        // MDCONVERT_PANDOC: pandoc executable
	Compiler   string        // MDCONVERT_PDFLATEX: pdflatex executable
	NoOpen     bool          // MDCONVERT_NO_OPEN: never open produced files
	Timeout    time.Duration // MDCONVERT_TIMEOUT: per-conversion timeout
}

// knownEnvVars lists valid MDCONVERT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDCONVERT_CONFIG":      true,
	"MDCONVERT_OUTPUT_ROOT": true,
	"MDCONVERT_PANDOC":      true,
	"MDCONVERT_PDFLATEX":    true,
	"MDCONVERT_NO_OPEN":     true,
	"MDCONVERT_TIMEOUT":     true,
	"MDCONVERT_CONTAINER":   true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized MDCONVERT_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDCONVERT_CONFIG"),
		OutputRoot: os.Getenv("MDCONVERT_OUTPUT_ROOT"),
		Pandoc:     os.Getenv("MDCONVERT_PANDOC"),
		Compiler:   os.Getenv("MDCONVERT_PDFLATEX"),
	}

	// Any true-ish value disables opening; unparsable values are ignored.
	if v := os.Getenv("MDCONVERT_NO_OPEN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NoOpen = b
		}
	}

	if timeout := os.Getenv("MDCONVERT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDCONVERT_* variables.
// Helps catch typos like MDCONVERT_OUTPUTROOT instead of MDCONVERT_OUTPUT_ROOT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDCONVERT_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values over the loaded config.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via applyRuntimeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputRoot != "" {
		cfg.Global.OutputRoot = env.OutputRoot
	}
	if env.NoOpen {
		cfg.Global.AutoOpenOutput = false
	}
}
