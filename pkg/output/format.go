package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
)

// Format selects how results are rendered.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ParseFormat validates a --out value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatTable:
		return f, nil
	}
	return "", svc_err.NewValidationError(
		fmt.Sprintf("unknown output format %q", s),
		"use one of: text, json, yaml, table")
}

// Render writes data to w in the given format.
func Render(w io.Writer, format Format, data interface{}) error {
	switch format {
	case FormatJSON:
		return JSONTo(w, data)
	case FormatYAML:
		return YAMLTo(w, data)
	case FormatTable:
		return tableTo(w, data)
	default:
		return textTo(w, data)
	}
}

// textTo prints scalars and lists plainly and falls back to YAML for
// structured values.
func textTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		_, err := fmt.Fprintln(w, v)
		return err
	case bool:
		_, err := fmt.Fprintln(w, v)
		return err
	case []string:
		for _, s := range v {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
		}
		return nil
	case map[string]string:
		for _, k := range sortedKeys(v) {
			if _, err := fmt.Fprintf(w, "%s: %s\n", k, v[k]); err != nil {
				return err
			}
		}
		return nil
	}
	return YAMLTo(w, data)
}

func tableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case []string:
		t := NewTableTo(w).WithHeaders("NAME")
		for _, s := range v {
			t.AddRow(s)
		}
		return t.Render()
	case map[string]string:
		t := NewTableTo(w).WithHeaders("NAME", "VALUE")
		for _, k := range sortedKeys(v) {
			t.AddRow(k, strings.ReplaceAll(v[k], "\n", ","))
		}
		return t.Render()
	}
	return textTo(w, data)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
