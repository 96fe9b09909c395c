package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/alnah/go-mdconvert/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigPath = errors.New("config path cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigInvalid   = errors.New("invalid config")
)

// BaseName is the stem of the config file searched in the working and home directories.
const BaseName = "markdown-converter"

// Extensions are tried in order for every search location.
var Extensions = []string{".yaml", ".yml", ".json"}

// Output naming schemes.
const (
	NamingDate   = "date"   // slug derived from document content
	NamingPrompt = "prompt" // interactive callers ask the user for a slug
)

// Section names, also used as format identifiers.
const (
	SectionGlobal = "global"
	SectionPDF    = "pdf"
	SectionDOCX   = "docx"
	SectionLaTeX  = "latex"
	SectionHTML   = "html"
)

// Config is the typed view of the merged configuration tree.
type Config struct {
	Global GlobalConfig `yaml:"global"`
	PDF    FormatConfig `yaml:"pdf"`
	DOCX   FormatConfig `yaml:"docx"`
	LaTeX  FormatConfig `yaml:"latex"`
	HTML   HTMLConfig   `yaml:"html"`

	raw    map[string]any
	source string
}

// GlobalConfig holds settings shared by every output format.
type GlobalConfig struct {
	SaveMarkdownSource bool   `yaml:"save_markdown_source"`
	AutoOpenOutput     bool   `yaml:"auto_open_output"`
	OutputNaming       string `yaml:"output_naming"` // "date" or "prompt"
	DateFormat         string `yaml:"date_format"`   // dateutil tokens or preset
	SlugWords          int    `yaml:"slug_words"`    // 0 disables content slugs
	OutputRoot         string `yaml:"output_root"`   // parent of PDF/, DOCX/, ... (empty = cwd)
}

// FormatConfig holds the pandoc-facing settings of one output format.
// Geometry and Font are nil when the section does not define them.
type FormatConfig struct {
	Geometry      *GeometryConfig `yaml:"geometry"`
	Font          *FontConfig     `yaml:"font"`
	DocumentClass string          `yaml:"document_class"`
	CompilePDF    bool            `yaml:"compile_pdf"`
}

// GeometryConfig maps onto the LaTeX geometry package options.
type GeometryConfig struct {
	Margin string `yaml:"margin"` // "1in", "2.5cm"
	Paper  string `yaml:"paper"`  // "letter", "a4"
}

// FontConfig holds font directives.
type FontConfig struct {
	Family string `yaml:"family"`
	Size   string `yaml:"size"` // "12pt"
}

// HTMLConfig holds settings for the in-process HTML renderer.
type HTMLConfig struct {
	HighlightStyle string `yaml:"highlight_style"` // chroma style name
	HardWraps      bool   `yaml:"hard_wraps"`
}

// Defaults returns a fresh copy of the built-in configuration tree.
// Callers may mutate the result freely.
func Defaults() map[string]any {
	return map[string]any{
		SectionGlobal: map[string]any{
			"save_markdown_source": false,
			"auto_open_output":     false,
			"output_naming":        NamingDate,
			"date_format":          "YYYYMMDD",
			"slug_words":           6,
			"output_root":          "",
		},
		SectionPDF: map[string]any{
			"geometry": map[string]any{"margin": "1in", "paper": "letter"},
			"font":     map[string]any{"family": "", "size": "12pt"},
		},
		SectionDOCX: map[string]any{
			"font": map[string]any{"family": "", "size": "12pt"},
		},
		SectionLaTeX: map[string]any{
			"geometry":       map[string]any{"margin": "1in", "paper": "letter"},
			"font":           map[string]any{"family": "", "size": "12pt"},
			"document_class": "article",
			"compile_pdf":    true,
		},
		SectionHTML: map[string]any{
			"highlight_style": "github",
			"hard_wraps":      false,
		},
	}
}

// DefaultConfig returns the typed view of Defaults.
func DefaultConfig() *Config {
	cfg, err := fromTree(Defaults(), "")
	if err != nil {
		// Defaults are a compile-time constant; failing here is a programming error.
		panic(fmt.Sprintf("config: built-in defaults do not decode: %v", err))
	}
	return cfg
}

// DeepMerge returns a new tree where override wins at every leaf.
// Nested maps merge key by key; any other value replaces outright.
// Neither argument is modified.
func DeepMerge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = deepCopy(v)
	}
	for k, ov := range override {
		om, overrideIsMap := ov.(map[string]any)
		bm, baseIsMap := out[k].(map[string]any)
		if overrideIsMap && baseIsMap {
			out[k] = DeepMerge(bm, om)
			continue
		}
		out[k] = deepCopy(ov)
	}
	return out
}

func deepCopy(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, val := range n {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

// fromTree decodes a merged tree into a Config that keeps the tree.
func fromTree(tree map[string]any, source string) (*Config, error) {
	var cfg Config
	if err := yamlutil.Decode(tree, &cfg); err != nil {
		return nil, err
	}
	cfg.raw = tree
	cfg.source = source
	return &cfg, nil
}

// Raw returns a copy of the merged tree, unknown keys included.
func (c *Config) Raw() map[string]any {
	if c.raw == nil {
		return Defaults()
	}
	return deepCopy(c.raw).(map[string]any)
}

// Source returns the file the configuration was loaded from ("" = built-in defaults).
func (c *Config) Source() string {
	return c.source
}

// Section returns the settings for a format section name.
func (c *Config) Section(name string) (FormatConfig, bool) {
	switch strings.ToLower(name) {
	case SectionPDF:
		return c.PDF, true
	case SectionDOCX:
		return c.DOCX, true
	case SectionLaTeX:
		return c.LaTeX, true
	default:
		return FormatConfig{}, false
	}
}

// Load strictly loads a single config file: missing files, parse failures and
// invalid values are all errors. Used to check a file before relying on it.
func Load(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyConfigPath
	}
	tree, err := readTree(fs, path)
	if err != nil {
		return nil, err
	}
	cfg, err := fromTree(DeepMerge(Defaults(), tree), path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func readTree(fs afero.Fs, path string) (map[string]any, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	tree, err := yamlutil.UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return tree, nil
}

// UnknownKeys lists dotted keys of tree that the built-in defaults do not
// define. Keys starting with "_" are annotations and never reported.
func UnknownKeys(tree map[string]any) []string {
	var unknown []string
	collectUnknown(Defaults(), tree, "", &unknown)
	return unknown
}

func collectUnknown(known, tree map[string]any, prefix string, out *[]string) {
	for k, v := range tree {
		if strings.HasPrefix(k, "_") {
			continue
		}
		kv, ok := known[k]
		if !ok {
			*out = append(*out, prefix+k)
			continue
		}
		km, knownIsMap := kv.(map[string]any)
		tm, treeIsMap := v.(map[string]any)
		if knownIsMap && treeIsMap {
			collectUnknown(km, tm, prefix+k+".", out)
		}
	}
}

// SearchPaths returns the ordered candidate files: explicit first (if any),
// then the working directory, the home directory and the user config directory.
func SearchPaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	for _, ext := range Extensions {
		paths = append(paths, BaseName+ext)
	}
	if home, err := os.UserHomeDir(); err == nil {
		for _, ext := range Extensions {
			paths = append(paths, filepath.Join(home, BaseName+ext))
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range Extensions {
			paths = append(paths, filepath.Join(dir, "mdconvert", "config"+ext))
		}
	}
	return paths
}
