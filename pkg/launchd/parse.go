package launchd

import (
	"sort"
	"strconv"
	"strings"
)

// ListEntry is one row of `launchctl list`.
type ListEntry struct {
	PID    int    `json:"pid" yaml:"pid"` // 0 when the job is not running
	Status string `json:"status" yaml:"status"`
	Label  string `json:"label" yaml:"label"`
}

// Running reports whether launchd has a live process for the job.
func (e ListEntry) Running() bool {
	return e.PID > 0
}

// parseList parses the tab separated `launchctl list` table, skipping the
// PID/Status/Label header and malformed rows.
func parseList(out string) []ListEntry {
	var entries []ListEntry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "PID") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			fields = strings.Fields(line)
			if len(fields) != 3 {
				continue
			}
		}
		entry := ListEntry{Status: strings.TrimSpace(fields[1]), Label: strings.TrimSpace(fields[2])}
		if pid, err := strconv.Atoi(strings.TrimSpace(fields[0])); err == nil {
			entry.PID = pid
		}
		entries = append(entries, entry)
	}
	return entries
}

// uniqueLabels returns the sorted, de-duplicated labels of entries.
func uniqueLabels(entries []ListEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Label]; ok {
			continue
		}
		seen[e.Label] = struct{}{}
		labels = append(labels, e.Label)
	}
	sort.Strings(labels)
	return labels
}

// parseDisabled extracts label => state pairs from `launchctl print-disabled`.
// Older releases print true/false, newer ones disabled/enabled.
func parseDisabled(out string) map[string]bool {
	states := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		left, right, ok := strings.Cut(line, "=>")
		if !ok {
			continue
		}
		parts := strings.Split(left, `"`)
		if len(parts) < 3 {
			continue
		}
		switch strings.TrimSpace(right) {
		case "true", "disabled":
			states[parts[1]] = true
		default:
			states[parts[1]] = false
		}
	}
	return states
}
