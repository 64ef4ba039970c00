package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/mpdnotify/internal/model"
)

// LineFormatter prints a single line, for status bars.
type LineFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewLineFormatter creates a new line formatter.
func NewLineFormatter(opts FormatterOptions) *LineFormatter {
	f := &LineFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("line").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes "artist - title" or nothing when stopped.
func (f *LineFormatter) Format(w io.Writer, np NowPlaying) error {
	_, err := fmt.Fprintln(w, f.formatLine(np))
	return err
}

func (f *LineFormatter) formatLine(np NowPlaying) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, newTemplateData(np)); err == nil {
			return buf.String()
		}
	}

	if np.Track == nil || np.Status.State == model.StateStopped {
		return ""
	}

	sep := f.opts.Separator
	if sep == "" {
		sep = " - "
	}

	var parts []string
	if np.Track.Artist != "" {
		parts = append(parts, np.Track.Artist)
	}
	parts = append(parts, np.Track.TitleOr("No Title"))

	line := strings.Join(parts, sep)
	if !np.Status.IsPlaying() {
		line += " (paused)"
	}
	return line
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"upper": strings.ToUpper,
	}
}

// truncate shortens s to maxLen characters, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
