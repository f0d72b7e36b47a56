/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
	"runtime"
)

// LogPathEnv overrides every other log location when set.
const LogPathEnv = "MACSVC_LOG_FILE"

// PlatformLogPaths returns fallback log paths in order of priority for the platform.
func PlatformLogPaths() []string {
	if p := os.Getenv(LogPathEnv); p != "" {
		return []string{p}
	}

	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		paths := []string{}
		if home != "" {
			paths = append(paths, filepath.Join(home, "Library", "Logs", "macsvc", "macsvc.log"))
		}
		return append(paths, "/tmp/macsvc/macsvc.log")
	default:
		paths := []string{}
		if home != "" {
			paths = append(paths, filepath.Join(home, ".local", "state", "macsvc", "macsvc.log"))
		}
		return append(paths, "/tmp/macsvc/macsvc.log")
	}
}
