// Package opener hands produced files to the desktop's default application.
package opener

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrNoOpener is returned when the platform has no known open command or the
// command is not installed.
var ErrNoOpener = errors.New("no default-application opener available")

// Opener opens a file with the user's default application.
type Opener interface {
	Open(path string) error
}

// System opens files with the platform command (xdg-open, open, rundll32).
type System struct {
	GOOS     string
	LookPath func(string) (string, error)
	Start    func(name string, args ...string) error
}

// NewSystem returns a System for the running platform.
func NewSystem() *System {
	return &System{GOOS: runtime.GOOS, LookPath: exec.LookPath, Start: startDetached}
}

// Open starts the platform opener for path without waiting for it.
func (s *System) Open(path string) error {
	name, args, err := CommandFor(s.GOOS, path)
	if err != nil {
		return err
	}
	if _, err := s.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", ErrNoOpener, name)
	}
	if err := s.Start(name, args...); err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return nil
}

// Available reports the opener command for the platform if it is installed.
func (s *System) Available() (string, bool) {
	name, _, err := CommandFor(s.GOOS, "")
	if err != nil {
		return "", false
	}
	path, err := s.LookPath(name)
	if err != nil {
		return name, false
	}
	return path, true
}

// CommandFor returns the command line that opens path on goos.
func CommandFor(goos, path string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{path}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris", "illumos":
		return "xdg-open", []string{path}, nil
	default:
		return "", nil, fmt.Errorf("%w: unsupported platform %s", ErrNoOpener, goos)
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Nop never opens anything. Used when opening is disabled.
type Nop struct{}

func (Nop) Open(string) error { return nil }
