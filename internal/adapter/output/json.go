package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats the now-playing state as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes the state as an indented JSON object.
func (f *JSONFormatter) Format(w io.Writer, np NowPlaying) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(np)
}
