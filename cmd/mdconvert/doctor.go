package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	mdconvert "github.com/alnah/go-mdconvert"
	"github.com/alnah/go-mdconvert/internal/config"
	"github.com/alnah/go-mdconvert/internal/fileutil"
	"github.com/alnah/go-mdconvert/internal/hints"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Pandoc   toolInfo   `json:"pandoc"`
	Compiler toolInfo   `json:"pdflatex"`
	Opener   openerInfo `json:"opener"`
	Config   configInfo `json:"config"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds external tool detection results.
type toolInfo struct {
	Name    string `json:"name"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// openerInfo holds default-application opener detection results.
type openerInfo struct {
	Found   bool   `json:"found"`
	Command string `json:"command,omitempty"`
}

// configInfo holds configuration resolution results.
type configInfo struct {
	Source   string `json:"source,omitempty"` // empty = built-in defaults
	AutoOpen bool   `json:"auto_open_output"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	OutputRoot     string `json:"output_root"`
	OutputWritable bool   `json:"output_writable"`
}

// availabler is implemented by openers that can report their command.
type availabler interface {
	Available() (string, bool)
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	var common commonFlags
	fs := newFlagSet("doctor", env.Stderr, printDoctorUsage)
	addCommonFlags(fs, &common)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	if err := parseFlagSet(fs, args); err != nil {
		return finish(err, env)
	}

	result := runDoctor(ctx, common.config, env)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, configPath string, env *Environment) *doctorResult {
	envCfg := loadEnvConfig()
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	cfg := checkConfig(result, configPath, envCfg, env)
	checkPandoc(ctx, result, envCfg, env)
	checkCompiler(ctx, result, envCfg, cfg, env)
	checkOpener(result, cfg, env)
	checkEnvironment(result, env)
	checkSystem(result, cfg, env)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig resolves configuration; unusable files become warnings.
func checkConfig(result *doctorResult, configPath string, envCfg *envConfig, env *Environment) *config.Config {
	explicit := configPath
	if explicit == "" {
		explicit = envCfg.ConfigPath
	}
	if explicit != "" && !fileutil.FileExists(env.Fs, explicit) {
		result.Errors = append(result.Errors, fmt.Sprintf("Config file not found: %s", explicit))
	}

	resolver := &config.Resolver{Fs: env.Fs, Paths: config.SearchPaths(explicit)}
	cfg, warnings := resolver.Resolve()
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w.String())
	}
	applyEnvConfig(envCfg, cfg)

	result.Config.Source = cfg.Source()
	result.Config.AutoOpen = cfg.Global.AutoOpenOutput
	return cfg
}

// checkPandoc detects pandoc; without it only HTML output works.
func checkPandoc(ctx context.Context, result *doctorResult, envCfg *envConfig, env *Environment) {
	result.Pandoc = detectTool(ctx, envCfg.Pandoc, mdconvert.DefaultPandoc, env)
	if !result.Pandoc.Found {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%s not found: PDF, DOCX and LaTeX output unavailable. Install pandoc or set MDCONVERT_PANDOC",
			result.Pandoc.Name))
		return
	}
	if result.Pandoc.Version == "" {
		result.Warnings = append(result.Warnings, "Could not get pandoc version")
	}
}

// checkCompiler detects pdflatex; without it LaTeX output stays uncompiled.
func checkCompiler(ctx context.Context, result *doctorResult, envCfg *envConfig, cfg *config.Config, env *Environment) {
	result.Compiler = detectTool(ctx, envCfg.Compiler, mdconvert.DefaultCompiler, env)
	if !result.Compiler.Found && cfg.LaTeX.CompilePDF {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%s not found: LaTeX output will not be compiled to PDF. Install a TeX distribution or set MDCONVERT_PDFLATEX",
			result.Compiler.Name))
	}
}

func detectTool(ctx context.Context, override, fallback string, env *Environment) toolInfo {
	info := toolInfo{Name: override}
	if info.Name == "" {
		info.Name = fallback
	}

	path, err := env.LookPath(info.Name)
	if err != nil {
		return info
	}
	info.Found = true
	info.Path = path

	if env.ToolVersion != nil {
		if v, err := env.ToolVersion(ctx, path); err == nil {
			info.Version = v
		}
	}
	return info
}

// checkOpener detects the default-application opener. Its absence only
// matters when auto_open_output is on.
func checkOpener(result *doctorResult, cfg *config.Config, env *Environment) {
	switch o := env.Opener.(type) {
	case nil:
		result.Opener.Found = false
	case availabler:
		result.Opener.Command, result.Opener.Found = o.Available()
	default:
		result.Opener.Found = true
	}

	if !result.Opener.Found && cfg.Global.AutoOpenOutput {
		result.Warnings = append(result.Warnings,
			"auto_open_output is on but no opener is available"+hints.ForOpener())
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	// Detect container (multi-signal approach)
	result.Env.Container, result.Env.ContainerHint = isContainer(env)

	// Detect CI environments
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(env *Environment) (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("MDCONVERT_CONTAINER") == "1" {
		return true, "MDCONVERT_CONTAINER=1"
	}
	// Docker
	if fileutil.FileExists(env.Fs, "/.dockerenv") {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the output root accepts new files.
func checkSystem(result *doctorResult, cfg *config.Config, env *Environment) {
	root := cfg.Global.OutputRoot
	if root == "" {
		root = "."
	}
	result.System.OutputRoot = root

	if !fileutil.PathExists(env.Fs, root) {
		// Created on first conversion.
		result.Warnings = append(result.Warnings, fmt.Sprintf("Output root %s does not exist yet", root))
		return
	}
	if fileutil.IsWritableDir(env.Fs, root) {
		result.System.OutputWritable = true
		return
	}
	result.Errors = append(result.Errors, fmt.Sprintf("Output root not writable: %s", root))
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdconvert doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Tools")
	printTool(w, r.Pandoc, "[ERROR]")
	printTool(w, r.Compiler, "[WARN]")
	if r.Opener.Found {
		if r.Opener.Command != "" {
			fmt.Fprintf(w, "  [OK] opener: %s\n", r.Opener.Command)
		} else {
			fmt.Fprintln(w, "  [OK] opener: available")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] opener: not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	if r.Config.Source != "" {
		fmt.Fprintf(w, "  [OK] Loaded from %s\n", r.Config.Source)
	} else {
		fmt.Fprintln(w, "  [OK] Using built-in defaults")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.OutputWritable {
		fmt.Fprintf(w, "  [OK] Output root %s: writable\n", r.System.OutputRoot)
	} else {
		fmt.Fprintf(w, "  [WARN] Output root %s: not verified\n", r.System.OutputRoot)
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printTool(w io.Writer, t toolInfo, missing string) {
	if !t.Found {
		fmt.Fprintf(w, "  %s %s: not found\n", missing, t.Name)
		return
	}
	fmt.Fprintf(w, "  [OK] %s: %s\n", t.Name, t.Path)
	if t.Version != "" {
		fmt.Fprintf(w, "  [OK] %s version: %s\n", t.Name, t.Version)
	}
}
