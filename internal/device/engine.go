// Package device talks to the Android device over the adb executable.
// Everything above it depends on the Bridge interface only, so tests and
// alternative transports never need a real device.
package device

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNotFound is returned when a remote path cannot be listed or pulled.
// Transient device failures (busy, disconnected) are reported the same way:
// callers treat them as "not found" rather than aborting the run.
var ErrNotFound = errors.New("device: not found")

// Bridge is the device transport boundary.
type Bridge interface {
	// List returns the entry names of a remote directory.
	List(dir string) ([]string, error)
	// FindFiles returns absolute paths of all regular files under root.
	FindFiles(root string) ([]string, error)
	// Pull copies a remote file to a local path.
	Pull(remotePath, localPath string) error
	// RunPrivileged runs a shell command through su and returns its output.
	RunPrivileged(command string) (string, error)
	// HasRoot reports whether su grants uid 0 on the device.
	HasRoot() bool
}

// Engine wraps the adb executable.
type Engine struct {
	adbPath string
}

// NewEngine locates the adb binary and returns an Engine. Discovery order:
// explicit configured path, bundled "adb" directory next to the working
// directory, then $PATH.
func NewEngine(configuredPath string) (*Engine, error) {
	path, err := findAdb(configuredPath)
	if err != nil {
		return nil, err
	}
	return &Engine{adbPath: path}, nil
}

func findAdb(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("configured adb path does not exist: %s", configured)
	}

	binary := "adb"
	if runtime.GOOS == "windows" {
		binary = "adb.exe"
	}
	bundled := filepath.Join("adb", binary)
	if _, err := os.Stat(bundled); err == nil {
		return bundled, nil
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("adb not found: set ADB_PATH or install adb on PATH")
	}
	return path, nil
}

func (e *Engine) run(args ...string) (string, error) {
	out, err := exec.Command(e.adbPath, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%w: adb %s: %v", ErrNotFound, strings.Join(args, " "), err)
	}
	return string(out), nil
}

func (e *Engine) List(dir string) ([]string, error) {
	out, err := e.run("shell", "ls", dir)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func (e *Engine) FindFiles(root string) ([]string, error) {
	out, err := e.run("shell", "find", root, "-type", "f")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func (e *Engine) Pull(remotePath, localPath string) error {
	_, err := e.run("pull", remotePath, localPath)
	return err
}

func (e *Engine) RunPrivileged(command string) (string, error) {
	return e.run("shell", "su", "-c", command)
}

func (e *Engine) HasRoot() bool {
	out, err := e.RunPrivileged("id")
	return err == nil && strings.Contains(out, "uid=0(root)")
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
