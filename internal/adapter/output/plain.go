package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/mpdnotify/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stateStyle = map[model.PlaybackState]lipgloss.Style{
		model.StatePlaying: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		model.StatePaused:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		model.StateStopped: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// PlainFormatter formats the now-playing state as human-readable text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes the state as plain text.
func (f *PlainFormatter) Format(w io.Writer, np NowPlaying) error {
	if f.template != nil {
		if err := f.template.Execute(w, newTemplateData(np)); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}

	var sb strings.Builder

	state := np.Status.State.String()
	sb.WriteString(f.style(stateStyle[np.Status.State], "["+state+"]"))

	if np.Track == nil {
		sb.WriteString(" nothing queued\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	sb.WriteString(" " + f.style(titleStyle, np.Track.TitleOr("No Title")))
	if np.Status.Duration > 0 {
		sb.WriteString(fmt.Sprintf(" (%s/%s)", clock(np.Status.Elapsed), clock(np.Status.Duration)))
	}
	sb.WriteString("\n")

	f.field(&sb, "artist", np.Track.Artist)
	f.field(&sb, "album", np.Album)
	f.field(&sb, "file", np.Track.File)

	if f.opts.ShowArt {
		art := np.Art
		if art != "" && np.ArtSize > 0 {
			art += " (" + humanize.Bytes(uint64(np.ArtSize)) + ")"
		}
		f.field(&sb, "art", art)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// field writes an indented "label: value" line, skipping empty values.
func (f *PlainFormatter) field(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString("    " + f.style(labelStyle, label+":") + " " + value + "\n")
}

func (f *PlainFormatter) style(s lipgloss.Style, text string) string {
	if !f.opts.Color {
		return text
	}
	return s.Render(text)
}

// FormatField outputs a specific field of the current track.
func FormatField(np NowPlaying, field string) string {
	data := newTemplateData(np)
	switch strings.ToLower(field) {
	case "title", "summary":
		return data.Title
	case "artist":
		return data.Artist
	case "album":
		return data.Album
	case "file":
		return data.File
	case "art", "icon":
		return data.Art
	case "state":
		return data.State
	case "body":
		return data.Artist + "\n" + data.Album
	default:
		return data.Title
	}
}
