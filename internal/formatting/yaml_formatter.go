package formatting

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// YAMLFormatter provides YAML output formatting. Field names follow the json
// tags of the data, so JSON and YAML output use the same keys.
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

// Format writes view.Data as YAML.
func (f *YAMLFormatter) Format(view View) error {
	out, err := yaml.Marshal(view.Data)
	if err != nil {
		return fmt.Errorf("failed to encode output as YAML: %w", err)
	}
	_, err = f.options.writer().Write(out)
	return err
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}
