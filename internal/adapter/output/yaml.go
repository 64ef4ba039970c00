package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats the now-playing state as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes the state as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, np NowPlaying) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(np); err != nil {
		return err
	}
	return encoder.Close()
}
