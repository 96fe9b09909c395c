package mdconvert

import "github.com/alnah/go-mdconvert/internal/config"

// Config is the resolved configuration.
type Config = config.Config

// ConfigWarning reports a config file that was found but skipped.
type ConfigWarning = config.Warning

// ResolveConfig loads configuration from explicit (if non-empty) and the
// standard search paths. It never fails; unusable files produce warnings and
// the built-in defaults are used when nothing loads.
func ResolveConfig(explicit string) (*Config, []ConfigWarning) {
	return config.NewResolver(explicit).Resolve()
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}
