package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTable returns a tabwriter for aligned columns. Cells stay unstyled so
// escape sequences never skew the alignment.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// emit prints v as JSON in JSON mode and calls human otherwise.
func (a *app) emit(w io.Writer, v any, human func(io.Writer) error) error {
	if a.flags.jsonMode {
		return printJSON(w, v)
	}
	return human(w)
}

// progress renders completed/total with a percentage.
func progress(completed, total int) string {
	if total == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d (%d%%)", completed, total, completed*100/total)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
