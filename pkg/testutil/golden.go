// Package testutil provides testing utilities for macsvc
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bradleyjkemp/cupaloy/v2"
)

// GoldenFile provides golden file testing utilities for snapshot testing.
//
// Useful for rendered descriptors and CLI output tables.
//
// Usage:
//
//	func TestEncodeDescriptor(t *testing.T) {
//	    data, _ := launchd.EncodeDescriptor(d)
//	    testutil.GoldenString(t, string(data))
//	}
//
// To update golden files when expected output changes:
//
//	UPDATE_SNAPSHOTS=true go test ./...
type GoldenFile struct {
	t           *testing.T
	snapshotter *cupaloy.Config
}

// NewGolden creates a new golden file tester.
//
// Golden files are stored in: testdata/golden/<test_name>. A missing
// snapshot fails the test unless UPDATE_SNAPSHOTS is set.
func NewGolden(t *testing.T) *GoldenFile {
	t.Helper()

	goldenDir := filepath.Join("testdata", "golden")
	if err := os.MkdirAll(goldenDir, 0755); err != nil {
		t.Fatalf("Failed to create golden directory: %v", err)
	}

	return &GoldenFile{
		t: t,
		snapshotter: cupaloy.New(
			cupaloy.SnapshotSubdirectory(goldenDir),
			cupaloy.CreateNewAutomatically(os.Getenv("UPDATE_SNAPSHOTS") != ""),
			cupaloy.FailOnUpdate(false),
		),
	}
}

// Assert compares the given value against the golden file
func (g *GoldenFile) Assert(got interface{}) {
	g.t.Helper()

	if err := g.snapshotter.SnapshotWithName(snapshotName(g.t.Name()), got); err != nil {
		g.t.Fatalf("Golden file assertion failed: %v\n\nTo update golden files, run:\n  UPDATE_SNAPSHOTS=true go test ./...", err)
	}
}

// AssertWithName compares with a custom snapshot name
func (g *GoldenFile) AssertWithName(name string, got interface{}) {
	g.t.Helper()

	if err := g.snapshotter.SnapshotWithName(name, got); err != nil {
		g.t.Fatalf("Golden file assertion failed for '%s': %v", name, err)
	}
}

// GoldenString is a convenience function for string comparisons
func GoldenString(t *testing.T, got string) {
	t.Helper()
	NewGolden(t).Assert(got)
}

func snapshotName(testName string) string {
	return strings.NewReplacer("/", "-", " ", "_").Replace(testName)
}
