// Package integration provides CLI integration tests for keeper.
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
	// keeperBin is the path to the built keeper binary.
	keeperBin string
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

// cleanEnv returns os.Environ() with KEEPER_* and XDG_* variables removed.
func cleanEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "KEEPER_") || strings.HasPrefix(e, "XDG_") {
			continue
		}
		env = append(env, e)
	}
	return env
}

// TestEnv provides an isolated test environment with its own config and
// data directory.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
	// Env is appended to the cleaned process environment.
	Env []string
}

// NewTestEnv creates a new isolated test environment. bcrypt runs at its
// minimum cost to keep the suite fast.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build keeper: %v", buildErr)
	}
	if keeperBin == "" {
		t.Fatal("keeper binary not built (keeperBin is empty)")
	}

	tempDir := t.TempDir()
	return &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  filepath.Join(tempDir, "config"),
		DataDir: filepath.Join(tempDir, "data"),
		Env:     []string{"KEEPER_BCRYPT_COST=4"},
	}
}

// CmdResult holds the result of a keeper command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunKeeper executes the keeper CLI with the given stdin and arguments.
func (e *TestEnv) RunKeeper(stdin string, args ...string) CmdResult {
	e.t.Helper()
	allArgs := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	return runBinary(e.t, e.Env, "", stdin, allArgs...)
}

// MustRunKeeper executes the keeper CLI and fails the test on a non-zero exit.
func (e *TestEnv) MustRunKeeper(stdin string, args ...string) CmdResult {
	e.t.Helper()
	result := e.RunKeeper(stdin, args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("keeper %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// WriteFile writes content under the environment's temp directory and
// returns its path.
func (e *TestEnv) WriteFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.TempDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func runBinary(t *testing.T, env []string, workDir, stdin string, args ...string) CmdResult {
	t.Helper()
	cmd := exec.Command(keeperBin, args...)
	cmd.Env = append(cleanEnv(), env...)
	cmd.Dir = workDir
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			t.Fatalf("failed to run keeper: %v", err)
		}
		exitCode = exitErr.ExitCode()
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

// UserLine is one record of the credential file.
type UserLine struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	CreatedAt    string `json:"created_at"`
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
