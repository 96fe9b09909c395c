package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	mdconvert "github.com/alnah/go-mdconvert"
	"github.com/alnah/go-mdconvert/internal/opener"
	"github.com/alnah/go-mdconvert/internal/process"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, the filesystem and the external tool seams.
type Environment struct {
	Now         func() time.Time
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Fs          afero.Fs
	Runner      mdconvert.Runner
	Opener      mdconvert.Opener // nil disables auto-open
	LookPath    func(string) (string, error)
	ToolVersion func(ctx context.Context, path string) (string, error)
	WorkDir     string // directory tools run in; empty = process working directory
}

// DefaultEnv returns the production environment: real streams, the OS
// filesystem, subprocesses and the platform opener.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Fs:          afero.NewOsFs(),
		Runner:      mdconvert.ExecRunner{},
		Opener:      opener.NewSystem(),
		LookPath:    process.LookPath,
		ToolVersion: process.Version,
	}
}
