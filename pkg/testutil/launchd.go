package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
)

// LaunchdTree is a throwaway set of launchd search directories.
type LaunchdTree struct {
	Root    string
	Agents  string
	Daemons string
}

// NewLaunchdTree creates Library/LaunchAgents and Library/LaunchDaemons under
// a temporary root.
func NewLaunchdTree(t *testing.T) *LaunchdTree {
	t.Helper()
	root := t.TempDir()
	return &LaunchdTree{
		Root:    root,
		Agents:  CreateTestDir(t, root, filepath.Join("Library", "LaunchAgents"), 0755),
		Daemons: CreateTestDir(t, root, filepath.Join("Library", "LaunchDaemons"), 0755),
	}
}

// SearchPaths returns the directories in lookup order.
func (l *LaunchdTree) SearchPaths() []string {
	return []string{l.Agents, l.Daemons}
}

// AddDaemon writes a daemon descriptor for label and returns its path.
func (l *LaunchdTree) AddDaemon(t *testing.T, label string, keepAlive bool) string {
	t.Helper()
	return CreateTestFile(t, l.Daemons, label+".plist", PlistXML(label, keepAlive), 0644)
}

// AddAgent writes an agent descriptor for label and returns its path.
func (l *LaunchdTree) AddAgent(t *testing.T, label string, keepAlive bool) string {
	t.Helper()
	return CreateTestFile(t, l.Agents, label+".plist", PlistXML(label, keepAlive), 0644)
}

// PlistXML renders a minimal job descriptor running /bin/sleep 1000.
func PlistXML(label string, keepAlive bool) string {
	ka := "<false/>"
	if keepAlive {
		ka = "<true/>"
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>KeepAlive</key>
	%s
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>/bin/sleep</string>
		<string>1000</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`, ka, label)
}
