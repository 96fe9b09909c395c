package main

import (
	"fmt"

	"github.com/alnah/go-mdconvert/internal/config"
	"github.com/alnah/go-mdconvert/internal/fileutil"
	"github.com/alnah/go-mdconvert/internal/hints"
	"github.com/alnah/go-mdconvert/internal/yamlutil"
)

// runConfigCmd dispatches the config subcommands.
func runConfigCmd(args []string, env *Environment) error {
	if len(args) == 0 {
		printConfigUsage(env.Stderr)
		return fmt.Errorf("%w: config needs a subcommand", ErrUsage)
	}

	switch args[0] {
	case "show":
		return runConfigShow(args[1:], env)
	case "check":
		return runConfigCheck(args[1:], env)
	case "paths":
		return runConfigPaths(args[1:], env)
	default:
		printConfigUsage(env.Stderr)
		return fmt.Errorf("%w: unknown config subcommand %q", ErrUsage, args[0])
	}
}

// runConfigShow prints the effective configuration after env overrides.
func runConfigShow(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("config show", env.Stderr, printConfigUsage)
	addCommonFlags(fs, &common)
	asJSON := fs.Bool("json", false, "print as JSON")
	if err := parseFlagSet(fs, args); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(common.config, envCfg, env, stderrOrDiscard(env.Stderr, common.quiet))
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)

	marshal := yamlutil.Marshal
	if *asJSON {
		marshal = yamlutil.MarshalJSON
	}
	data, err := marshal(cfg)
	if err != nil {
		return err
	}

	if !*asJSON {
		source := cfg.Source()
		if source == "" {
			source = "built-in defaults"
		}
		fmt.Fprintf(env.Stdout, "# source: %s\n", source)
	}
	fmt.Fprint(env.Stdout, string(data))
	if *asJSON {
		fmt.Fprintln(env.Stdout)
	}
	return nil
}

// runConfigCheck strictly validates one file: the argument, or the first
// existing search path.
func runConfigCheck(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("config check", env.Stderr, printConfigUsage)
	addCommonFlags(fs, &common)
	if err := parseFlagSet(fs, args); err != nil {
		return err
	}

	path := common.config
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if path == "" {
		path = loadEnvConfig().ConfigPath
	}
	if path == "" {
		candidates := config.SearchPaths("")
		for _, p := range candidates {
			if fileutil.FileExists(env.Fs, p) {
				path = p
				break
			}
		}
		if path == "" {
			return fmt.Errorf("%w: no file in search paths%s", config.ErrConfigNotFound, hints.ForConfigNotFound(candidates))
		}
	}

	cfg, err := config.Load(env.Fs, path)
	if err != nil {
		return err
	}

	for _, key := range config.UnknownKeys(cfg.Raw()) {
		fmt.Fprintf(stderrOrDiscard(env.Stderr, common.quiet), "warning: unknown key %s (typo?)\n", key)
	}
	if !common.quiet {
		fmt.Fprintf(env.Stdout, "%s: OK\n", path)
	}
	return nil
}

// runConfigPaths lists the search paths in order, marking the ones that exist.
func runConfigPaths(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("config paths", env.Stderr, printConfigUsage)
	addCommonFlags(fs, &common)
	if err := parseFlagSet(fs, args); err != nil {
		return err
	}

	explicit := common.config
	if explicit == "" {
		explicit = loadEnvConfig().ConfigPath
	}
	for _, p := range config.SearchPaths(explicit) {
		mark := " "
		if fileutil.FileExists(env.Fs, p) {
			mark = "*"
		}
		fmt.Fprintf(env.Stdout, "%s %s\n", mark, p)
	}
	return nil
}
