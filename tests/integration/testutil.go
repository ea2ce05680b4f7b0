// Package integration runs the compass binary end to end against
// throwaway workspaces.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	// compassBin is the path to the built compass binary.
	compassBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv is an isolated workspace with its own config and data directory.
type TestEnv struct {
	t       *testing.T
	Root    string
	Config  string
	DataDir string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build compass: %v", buildErr)
	}
	if compassBin == "" {
		t.Fatal("compass binary not built")
	}
	dir := t.TempDir()
	return &TestEnv{
		t:       t,
		Root:    filepath.Join(dir, "workspace"),
		Config:  filepath.Join(dir, "config"),
		DataDir: filepath.Join(dir, "data"),
	}
}

// CmdResult holds the result of a compass invocation.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes compass against the environment.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()

	all := append([]string{"--config-dir", e.Config, "--root", e.Root, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(compassBin, all...)
	cmd.Env = append(os.Environ(), "COMPASS_ROOT=", "COMPASS_DATA_DIR=", "COMPASS_CONFIG_DIR=")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			e.t.Fatalf("failed to run compass: %v", err)
		}
		code = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// MustRun executes compass and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	res := e.Run(args...)
	if res.ExitCode != 0 {
		e.t.Fatalf("compass %v exited %d:\nstdout: %s\nstderr: %s", args, res.ExitCode, res.Stdout, res.Stderr)
	}
	return res
}

// Write creates a workspace file, making parent directories as needed.
func (e *TestEnv) Write(rel, content string) {
	e.t.Helper()
	path := filepath.Join(e.Root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatal(err)
	}
}

// Read returns a workspace file's contents.
func (e *TestEnv) Read(rel string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.Root, rel))
	if err != nil {
		e.t.Fatal(err)
	}
	return string(data)
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return v
}
