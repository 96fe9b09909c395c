package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	mdconvert "github.com/alnah/go-mdconvert"
)

const testDay = "20250525"

var fixedNow = func() time.Time {
	return time.Date(2025, time.May, 25, 14, 30, 0, 0, time.Local)
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// fakeRunner writes the artifacts pandoc and pdflatex would produce.
type fakeRunner struct {
	fs           afero.Fs
	pandocCode   int
	compilerCode int

	mu    sync.Mutex
	calls []mdconvert.Invocation
}

func (f *fakeRunner) Run(_ context.Context, inv mdconvert.Invocation) (mdconvert.ExitStatus, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	f.mu.Unlock()

	switch filepath.Base(inv.Path) {
	case "pandoc":
		if f.pandocCode != 0 {
			return mdconvert.ExitStatus{Code: f.pandocCode, Stderr: "pandoc: could not parse input"}, nil
		}
		i := slices.Index(inv.Args, "-o")
		if err := afero.WriteFile(f.fs, inv.Args[i+1], []byte("artifact"), 0o644); err != nil {
			return mdconvert.ExitStatus{}, err
		}
	case "pdflatex":
		tex := inv.Args[len(inv.Args)-1]
		_ = afero.WriteFile(f.fs, strings.TrimSuffix(tex, ".tex")+".pdf", []byte("%PDF"), 0o644)
		return mdconvert.ExitStatus{Code: f.compilerCode}, nil
	default:
		return mdconvert.ExitStatus{}, errors.New("unexpected tool " + inv.Path)
	}
	return mdconvert.ExitStatus{}, nil
}

func (f *fakeRunner) Calls() []mdconvert.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// fakeOpener records opened paths.
type fakeOpener struct {
	mu     sync.Mutex
	opened []string
}

func (f *fakeOpener) Open(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, path)
	return nil
}

func (f *fakeOpener) Opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.opened)
}

// unavailableOpener reports that no platform opener is installed.
type unavailableOpener struct{}

func (unavailableOpener) Open(string) error { return errors.New("no opener") }
func (unavailableOpener) Available() (string, bool) { return "xdg-open", false }

// lookPathFor finds only the named tools, under /usr/bin.
func lookPathFor(tools ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		if slices.Contains(tools, name) {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New(name + ": not found")
	}
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type harness struct {
	env    *Environment
	fs     afero.Fs
	runner *fakeRunner
	opener *fakeOpener
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newHarness returns an environment on an in-memory filesystem where only
// the given tools are installed.
func newHarness(stdin string, tools ...string) *harness {
	fs := afero.NewMemMapFs()
	h := &harness{
		fs:     fs,
		runner: &fakeRunner{fs: fs},
		opener: &fakeOpener{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.env = &Environment{
		Now:      fixedNow,
		Stdin:    strings.NewReader(stdin),
		Stdout:   h.stdout,
		Stderr:   h.stderr,
		Fs:       fs,
		Runner:   h.runner,
		Opener:   h.opener,
		LookPath: lookPathFor(tools...),
		ToolVersion: func(_ context.Context, path string) (string, error) {
			return filepath.Base(path) + " 3.1", nil
		},
		WorkDir: "/work",
	}
	return h
}

// run invokes the CLI with args after the program name.
func (h *harness) run(args ...string) int {
	return runMain(append([]string{"mdconvert"}, args...), h.env)
}

func (h *harness) writeFile(path, content string) {
	if err := afero.WriteFile(h.fs, path, []byte(content), 0o644); err != nil {
		panic(err)
	}
}

func (h *harness) exists(path string) bool {
	ok, _ := afero.Exists(h.fs, path)
	return ok
}
