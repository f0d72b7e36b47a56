package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// TableWriter provides a fluent interface for building and displaying tables
type TableWriter struct {
	writer    *tabwriter.Writer
	headers   []string
	rows      [][]string
	separator string
	styled    bool
}

// NewTableTo creates a new table writer that outputs to the specified writer.
// Headers are styled when w is a terminal.
func NewTableTo(w io.Writer) *TableWriter {
	return &TableWriter{
		writer:    tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		separator: "-",
		styled:    IsTerminal(w),
	}
}

// WithHeaders sets the column headers for the table
func (t *TableWriter) WithHeaders(headers ...string) *TableWriter {
	t.headers = headers
	return t
}

// WithStyle forces header styling on or off.
func (t *TableWriter) WithStyle(styled bool) *TableWriter {
	t.styled = styled
	return t
}

// AddRow adds a row of data to the table
func (t *TableWriter) AddRow(values ...string) *TableWriter {
	t.rows = append(t.rows, values)
	return t
}

// Render outputs the table to the writer
func (t *TableWriter) Render() error {
	if len(t.headers) > 0 {
		headers := make([]string, len(t.headers))
		separators := make([]string, len(t.headers))
		for i, h := range t.headers {
			headers[i] = h
			if t.styled {
				headers[i] = headerStyle.Render(h)
			}
			separators[i] = strings.Repeat(t.separator, len(h))
		}
		fmt.Fprintln(t.writer, strings.Join(headers, "\t"))
		if !t.styled {
			fmt.Fprintln(t.writer, strings.Join(separators, "\t"))
		}
	}

	for _, row := range t.rows {
		fmt.Fprintln(t.writer, strings.Join(row, "\t"))
	}

	return t.writer.Flush()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
