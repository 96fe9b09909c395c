// Package process runs external converters with context cancellation and
// process-group cleanup.
package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrNotFound is returned when a tool cannot be located.
var ErrNotFound = errors.New("executable not found")

// StderrTailSize bounds the stderr kept for diagnostics.
const StderrTailSize = 4096

// waitDelay bounds how long Wait blocks on I/O after the process is killed.
const waitDelay = 2 * time.Second

// Command describes one external invocation.
type Command struct {
	Path  string
	Args  []string
	Stdin io.Reader
	Dir   string
	Env   []string // appended to the current environment
}

// Status is the observable result of a finished process.
type Status struct {
	ExitCode int
	Stderr   string // last StderrTailSize bytes
}

// LookPath resolves name on PATH.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return path, nil
}

// Run starts c and waits for it. A nonzero exit is reported in Status, not as
// an error; errors are reserved for spawn failures and cancellation. On
// cancellation the whole process group is killed.
func Run(ctx context.Context, c Command) (Status, error) {
	if c.Path == "" {
		return Status{}, fmt.Errorf("%w: empty command", ErrNotFound)
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	tail := &tailBuffer{max: StderrTailSize}
	cmd.Stderr = tail
	cmd.Stdout = io.Discard

	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			KillProcessGroup(cmd.Process.Pid)
		}
		return nil
	}
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return Status{}, fmt.Errorf("%w: %s", ErrNotFound, c.Path)
		}
		return Status{}, fmt.Errorf("starting %s: %w", c.Path, err)
	}

	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Status{ExitCode: -1, Stderr: tail.String()}, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return Status{ExitCode: 0, Stderr: tail.String()}, nil
	case errors.As(err, &exitErr):
		return Status{ExitCode: exitErr.ExitCode(), Stderr: tail.String()}, nil
	default:
		return Status{ExitCode: -1, Stderr: tail.String()}, fmt.Errorf("waiting for %s: %w", c.Path, err)
	}
}

// Version runs "path --version" and returns the first output line.
func Version(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s --version: %w", path, err)
	}
	return FirstLine(out.String()), nil
}

// FirstLine returns the first non-blank line of s, trimmed.
func FirstLine(s string) string {
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}

// tailBuffer keeps only the last max bytes written to it.
type tailBuffer struct {
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) >= t.max {
		t.buf = append(t.buf[:0], p[len(p)-t.max:]...)
		return n, nil
	}
	if over := len(t.buf) + len(p) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
