package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =====================================
// File System Testing Utilities
// =====================================

// CreateTestFile creates a test file with specified content and permissions
func CreateTestFile(t *testing.T, dir, filename, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

// CreateTestDir creates a test directory with specified permissions
func CreateTestDir(t *testing.T, dir, dirname string, perm os.FileMode) string {
	t.Helper()
	dirpath := filepath.Join(dir, dirname)
	require.NoError(t, os.MkdirAll(dirpath, perm))
	return dirpath
}

// AssertFilePermissions verifies file permissions
func AssertFilePermissions(t *testing.T, path string, expectedPerm os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, expectedPerm, info.Mode().Perm(), "permissions of %s", path)
}

// =====================================
// Environment Testing Utilities
// =====================================

// IsolateHome points HOME at a fresh temporary directory so code that reads
// ~/.macsvc or ~/Library never touches the developer's files.
func IsolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// =====================================
// Time Testing Utilities
// =====================================

// Eventually runs a function repeatedly until it succeeds or times out
func Eventually(t *testing.T, condition func() bool, timeout time.Duration, interval time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	t.Fatalf("condition was not met within %v", timeout)
}
