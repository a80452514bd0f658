// Package integration provides CLI integration tests for karte.
package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// karteBin is the path to the built karte binary.
	karteBin string
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

// SetKarteBin sets the path to the karte binary (called from TestMain).
func SetKarteBin(path string) {
	karteBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated test environment with its own config and data directory.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build karte: %v", buildErr)
	}
	if karteBin == "" {
		t.Fatal("karte binary not built (karteBin is empty)")
	}

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configContent := "data_dir: " + dataDir + "\nlog_level: warn\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  configDir,
		DataDir: dataDir,
	}
}

// CmdResult holds the result of a karte command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunKarte executes the karte CLI with the given arguments against the
// environment's config directory.
func (e *TestEnv) RunKarte(args ...string) CmdResult {
	e.t.Helper()
	allArgs := append([]string{"--config-dir", e.Config}, args...)
	return runKarte(e.t, nil, allArgs...)
}

// MustRunKarte executes the karte CLI and fails the test if it returns non-zero.
func (e *TestEnv) MustRunKarte(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunKarte(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("karte %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// cleanEnv returns os.Environ() with all KARTE_* and XDG_* variables removed,
// providing a clean baseline for subprocess isolation.
func cleanEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "KARTE_") || strings.HasPrefix(e, "XDG_") {
			continue
		}
		env = append(env, e)
	}
	return env
}

// runKarte executes the binary with args unchanged and env added to a
// clean environment.
func runKarte(t *testing.T, env []string, args ...string) CmdResult {
	t.Helper()
	cmd := exec.Command(karteBin, args...)
	cmd.Env = append(cleanEnv(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run karte: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// ReadJSONLFile reads a JSONL file (one JSON object per line) and returns a slice.
func ReadJSONLFile[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open JSONL file %s: %v", path, err)
	}
	defer f.Close()

	var results []T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("failed to parse JSONL line in %s: %v", path, err)
		}
		results = append(results, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to scan JSONL file %s: %v", path, err)
	}
	return results
}
