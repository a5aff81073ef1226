package formatting

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// Format renders the view as a rounded table.
func (f *TableFormatter) Format(view View) error {
	out := f.options.writer()

	if len(view.Rows) == 0 {
		fmt.Fprint(out, f.formatEmptyMessage("No entries found"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	if view.Title != "" && !f.options.Quiet {
		t.SetTitle(view.Title)
	}

	header := make(table.Row, len(view.Headers))
	for i, h := range view.Headers {
		header[i] = f.colorize(text.FgHiCyan, strings.ToUpper(h))
	}
	t.AppendHeader(header)

	for _, row := range view.Rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = f.colorCell(cell)
		}
		t.AppendRow(r)
	}

	t.Render()

	if view.Footer != "" && !f.options.Quiet {
		fmt.Fprintf(out, "\n%s\n", f.colorize(text.FgHiBlue, view.Footer))
	}
	return nil
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// colorCell highlights reconciliation states.
func (f *TableFormatter) colorCell(cell string) string {
	switch cell {
	case "BothSet", "None":
		return f.colorize(text.FgGreen, cell)
	case "MetaMissing", "MapMissing", "PropagateToDefinition", "PropagateToMapping":
		return f.colorize(text.FgYellow, cell)
	case "BothMissing", "Enqueue":
		return f.colorize(text.FgHiBlue, cell)
	case "ReportMismatch", "Mismatch":
		return f.colorize(text.FgRed, cell)
	}
	return cell
}

func (f *TableFormatter) colorize(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(message string) string {
	return fmt.Sprintf("%s\n", f.colorize(text.FgYellow, message))
}
