// test/e2e/framework.go

// Package e2e drives the compiled macsvc binary the way an operator would.
// Suites live behind build tags so a plain `go test ./...` never touches
// the host's launchd.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BinaryEnv overrides the binary under test instead of building one.
const BinaryEnv = "MACSVC_BINARY"

const commandTimeout = 2 * time.Minute

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

// E2ETestSuite runs commands against one built binary with an isolated HOME.
type E2ETestSuite struct {
	T       *testing.T
	Name    string
	Binary  string
	HomeDir string
}

// CommandResult captures one invocation.
type CommandResult struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// NewE2ETestSuite builds the binary once per test process and returns a suite
// bound to t.
func NewE2ETestSuite(t *testing.T, name string) *E2ETestSuite {
	t.Helper()

	buildOnce.Do(func() {
		binPath, buildErr = resolveBinary()
	})
	require.NoError(t, buildErr, "building macsvc")

	return &E2ETestSuite{
		T:       t,
		Name:    name,
		Binary:  binPath,
		HomeDir: t.TempDir(),
	}
}

// RunCommand executes the binary with args and never fails the test itself;
// callers assert on the result.
func (s *E2ETestSuite) RunCommand(args ...string) *CommandResult {
	s.T.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.Binary, args...)
	cmd.Env = append(os.Environ(), "HOME="+s.HomeDir, "MACSVC_LOG_LEVEL=error")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := &CommandResult{
		Args:     args,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		s.T.Fatalf("running %s %s: %v", s.Binary, strings.Join(args, " "), err)
	}

	s.T.Logf("[%s] macsvc %s -> exit %d (%s)", s.Name, strings.Join(args, " "), result.ExitCode, result.Duration.Round(time.Millisecond))
	return result
}

// Call runs `macsvc call <function> args... --out json`.
func (s *E2ETestSuite) Call(function string, args ...string) *CommandResult {
	s.T.Helper()
	full := append([]string{"call", function}, args...)
	return s.RunCommand(append(full, "--out", "json")...)
}

// AssertSuccess requires a zero exit code.
func (r *CommandResult) AssertSuccess(t *testing.T) {
	t.Helper()
	require.Equal(t, 0, r.ExitCode, "macsvc %s failed\nstdout: %s\nstderr: %s",
		strings.Join(r.Args, " "), r.Stdout, r.Stderr)
}

// AssertFails requires a non-zero exit code.
func (r *CommandResult) AssertFails(t *testing.T) {
	t.Helper()
	require.NotEqual(t, 0, r.ExitCode, "macsvc %s unexpectedly succeeded\nstdout: %s",
		strings.Join(r.Args, " "), r.Stdout)
}

// AssertContains checks stdout and stderr together.
func (r *CommandResult) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, r.Stdout+r.Stderr, substr)
}

// DecodeJSON unmarshals stdout into v.
func (r *CommandResult) DecodeJSON(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(r.Stdout), v), "stdout: %s", r.Stdout)
}

// Truthy reports whether stdout decodes to a non-empty JSON value the way a
// module result would be judged: false, "", null, [] and {} are falsy.
func (r *CommandResult) Truthy(t *testing.T) bool {
	t.Helper()
	var v interface{}
	r.DecodeJSON(t, &v)
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case []interface{}:
		return len(x) > 0
	case map[string]interface{}:
		return len(x) > 0
	}
	return true
}

func resolveBinary() (string, error) {
	if bin := os.Getenv(BinaryEnv); bin != "" {
		return bin, nil
	}

	root, err := moduleRoot()
	if err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp("", "macsvc-e2e-")
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, "macsvc")

	build := exec.Command("go", "build", "-o", out, ".")
	build.Dir = root
	if output, err := build.CombinedOutput(); err != nil {
		return "", errors.New("go build: " + err.Error() + "\n" + string(output))
	}
	return out, nil
}

func moduleRoot() (string, error) {
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
			return "", errors.New("go.mod not found above " + dir)
		}
		dir = parent
	}
}
