// Package formatting renders command output as a table, plain columns, JSON
// or YAML.
package formatting

import (
	"fmt"
	"io"
	"os"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatConsole OutputFormat = "plain" // kubectl-style columns
	FormatJSON    OutputFormat = "json"  // JSON output
	FormatYAML    OutputFormat = "yaml"  // YAML output
	FormatTable   OutputFormat = "table" // Rich table output
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatConsole, FormatJSON, FormatYAML, FormatTable:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, plain, json or yaml)", s)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements
	Color  bool // Enable colored output

	// Output defaults to os.Stdout.
	Output io.Writer
}

func (o Options) writer() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

// View is one result to render. Table and plain output use Headers and Rows;
// JSON and YAML marshal Data.
type View struct {
	Title   string
	Headers []string
	Rows    [][]string

	// Footer is printed after table output, e.g. a count.
	Footer string

	Data interface{}
}

// Formatter renders views.
type Formatter interface {
	Format(view View) error
	SetOptions(options Options)
	GetOptions() Options
}

// New creates the formatter for options.Format.
func New(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatConsole:
		return NewConsoleFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}
