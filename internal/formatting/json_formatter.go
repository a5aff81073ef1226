package formatting

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

// Format writes view.Data as indented JSON.
func (f *JSONFormatter) Format(view View) error {
	out, err := json.MarshalIndent(view.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output as JSON: %w", err)
	}
	_, err = fmt.Fprintln(f.options.writer(), string(out))
	return err
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}
