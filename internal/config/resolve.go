package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/alnah/go-mdconvert/internal/fileutil"
)

// Warning reports a candidate config file that was found but skipped, or,
// when Key is set, a single setting of a used file that was reset to its
// default.
type Warning struct {
	Path string
	Key  string // dotted key; empty when the whole file was skipped
	Err  error
}

func (w Warning) String() string {
	if w.Key != "" {
		return fmt.Sprintf("config %s: %s: %v (using default)", w.Path, w.Key, w.Err)
	}
	return fmt.Sprintf("ignoring config %s: %v", w.Path, w.Err)
}

// Resolver walks candidate config files and merges the first usable one
// over the built-in defaults.
type Resolver struct {
	Fs    afero.Fs
	Paths []string
}

// NewResolver returns a Resolver over the OS filesystem and SearchPaths(explicit).
func NewResolver(explicit string) *Resolver {
	return &Resolver{Fs: afero.NewOsFs(), Paths: SearchPaths(explicit)}
}

// Resolve never fails. Candidates that exist but cannot be read, parsed or
// decoded produce a Warning and the walk continues. The first candidate that
// parses is merged over the defaults; settings that fail validation are reset
// to their defaults, one Warning each, and the rest of the file still applies.
// When no candidate is usable the built-in defaults are returned.
func (r *Resolver) Resolve() (*Config, []Warning) {
	var warnings []Warning

	for _, path := range r.Paths {
		if !fileutil.FileExists(r.Fs, path) {
			continue
		}

		tree, err := readTree(r.Fs, path)
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Err: err})
			continue
		}

		cfg, reset, err := mergeValid(tree, path)
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Err: err})
			continue
		}
		return cfg, append(warnings, reset...)
	}

	return DefaultConfig(), warnings
}

// mergeValid merges tree over the defaults and restores the default of every
// invalid leaf.
func mergeValid(tree map[string]any, path string) (*Config, []Warning, error) {
	merged := DeepMerge(Defaults(), tree)
	cfg, err := fromTree(merged, path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	fields, err := cfg.InvalidFields()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if len(fields) == 0 {
		return cfg, nil, nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	defaults := Defaults()
	warnings := make([]Warning, 0, len(keys))
	for _, key := range keys {
		resetLeaf(merged, defaults, strings.Split(key, "."))
		warnings = append(warnings, Warning{Path: path, Key: key, Err: fmt.Errorf("%w: %v", ErrConfigInvalid, fields[key])})
	}

	cfg, err = fromTree(merged, path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, warnings, nil
}

// resetLeaf replaces tree's value at keys with the default, or removes it
// when the defaults have no such key.
func resetLeaf(tree, defaults map[string]any, keys []string) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := tree[k].(map[string]any)
		if !ok {
			return
		}
		tree = next
		defaults, _ = defaults[k].(map[string]any)
	}

	last := keys[len(keys)-1]
	if v, ok := defaults[last]; ok {
		tree[last] = deepCopy(v)
		return
	}
	delete(tree, last)
}
