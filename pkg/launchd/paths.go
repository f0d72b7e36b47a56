package launchd

import (
	"os"
	"path/filepath"
	"strings"
)

// System-wide launchd search directories, in lookup order.
var systemSearchPaths = []string{
	"/Library/LaunchAgents",
	"/Library/LaunchDaemons",
	"/System/Library/LaunchAgents",
	"/System/Library/LaunchDaemons",
}

// DefaultSearchPaths returns the invoking user's LaunchAgents directory
// followed by the system directories.
func DefaultSearchPaths() []string {
	paths := make([]string, 0, len(systemSearchPaths)+1)
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, "Library", "LaunchAgents"))
	}
	return append(paths, systemSearchPaths...)
}

// IsLaunchAgent reports whether a descriptor path belongs to a per-user
// agent directory, whose jobs live in the gui/<uid> domain.
func IsLaunchAgent(path string) bool {
	return strings.Contains(path, "LaunchAgents")
}

// isThirdPartyAgent excludes Apple's own agents under /System.
func isThirdPartyAgent(path string) bool {
	return IsLaunchAgent(path) && !strings.HasPrefix(path, "/System")
}

func hasPlistExt(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".plist")
}
