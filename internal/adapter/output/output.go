// Package output provides output formatters for the now-playing state.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmylchreest/mpdnotify/internal/model"
)

// NowPlaying is the state printed by `mpdnotify now`.
type NowPlaying struct {
	Status  model.Status `json:"status" yaml:"status"`
	Track   *model.Track `json:"track,omitempty" yaml:"track,omitempty"`
	Album   string       `json:"album,omitempty" yaml:"album,omitempty"`
	Art     string       `json:"art,omitempty" yaml:"art,omitempty"`
	ArtSize int64        `json:"art_size,omitempty" yaml:"art_size,omitempty"`
}

// NewNowPlaying assembles the printable state. art may be empty.
func NewNowPlaying(status model.Status, track *model.Track, art string) NowPlaying {
	np := NowPlaying{Status: status, Track: track, Art: art}
	if track != nil {
		np.Album = track.Album()
	}
	if art != "" {
		if info, err := os.Stat(art); err == nil {
			np.ArtSize = info.Size()
		}
	}
	return np
}

// Formatter formats the now-playing state for output.
type Formatter interface {
	// Format writes the formatted state to the writer.
	Format(w io.Writer, np NowPlaying) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatLine  FormatType = "line"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ParseFormatType validates a format name.
func ParseFormatType(s string) (FormatType, error) {
	switch f := FormatType(strings.ToLower(s)); f {
	case FormatPlain, FormatLine, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("unknown format %q, must be one of: plain, line, json, yaml", s)
	}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatLine:
		return NewLineFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template  string // Custom template for plain/line format
	Separator string // Field separator for line format
	Color     bool   // Style plain output with lipgloss
	ShowArt   bool   // Include the artwork path in plain output
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		Separator: " - ",
		Color:     true,
		ShowArt:   true,
	}
}

// templateData provides data for custom templates.
type templateData struct {
	State    string
	Title    string
	Artist   string
	Album    string
	File     string
	Art      string
	Elapsed  string
	Duration string
	Track    *model.Track
}

func newTemplateData(np NowPlaying) templateData {
	data := templateData{
		State:    np.Status.State.String(),
		Album:    np.Album,
		Art:      np.Art,
		Elapsed:  clock(np.Status.Elapsed),
		Duration: clock(np.Status.Duration),
		Track:    np.Track,
	}
	if np.Track != nil {
		data.Title = np.Track.TitleOr("No Title")
		data.Artist = np.Track.Artist
		data.File = np.Track.File
	}
	return data
}

// clock formats seconds as m:ss or h:mm:ss.
func clock(seconds float64) string {
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
