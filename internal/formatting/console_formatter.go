package formatting

import (
	"fmt"
	"io"
	"strings"
)

// ConsoleFormatter prints kubectl-style columns without box drawing, for
// piping into grep, awk or cut.
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{
		options: options,
	}
}

// Format renders the view as padded columns. Quiet drops the header row.
func (f *ConsoleFormatter) Format(view View) error {
	w := newPlainTableWriter(f.options.writer())
	w.setHeaders(view.Headers)
	w.showHeaders = !f.options.Quiet
	for _, row := range view.Rows {
		w.appendRow(row)
	}
	w.render()
	return nil
}

// SetOptions updates the formatter options
func (f *ConsoleFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *ConsoleFormatter) GetOptions() Options {
	return f.options
}

type plainTableWriter struct {
	headers      []string
	rows         [][]string
	columnWidths []int
	minPadding   int
	showHeaders  bool
	output       io.Writer
}

func newPlainTableWriter(output io.Writer) *plainTableWriter {
	return &plainTableWriter{
		minPadding:  3,
		showHeaders: true,
		output:      output,
	}
}

func (w *plainTableWriter) setHeaders(headers []string) {
	w.headers = make([]string, len(headers))
	w.columnWidths = make([]int, len(headers))
	for i, h := range headers {
		upper := strings.ToUpper(h)
		w.headers[i] = upper
		w.columnWidths[i] = len(upper)
	}
}

// appendRow pads or cuts row to the header count.
func (w *plainTableWriter) appendRow(row []string) {
	normalized := make([]string, len(w.headers))
	for i := range w.headers {
		if i < len(row) {
			normalized[i] = row[i]
			if len(row[i]) > w.columnWidths[i] {
				w.columnWidths[i] = len(row[i])
			}
		}
	}
	w.rows = append(w.rows, normalized)
}

func (w *plainTableWriter) render() {
	if len(w.headers) == 0 {
		return
	}
	if w.showHeaders {
		w.printRow(w.headers)
	}
	for _, row := range w.rows {
		w.printRow(row)
	}
}

func (w *plainTableWriter) printRow(row []string) {
	var sb strings.Builder
	for i, cell := range row {
		if i == len(row)-1 {
			sb.WriteString(cell)
			continue
		}
		sb.WriteString(fmt.Sprintf("%-*s", w.columnWidths[i]+w.minPadding, cell))
	}
	fmt.Fprintln(w.output, strings.TrimRight(sb.String(), " "))
}
