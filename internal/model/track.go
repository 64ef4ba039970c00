// Package model defines the core data structures for mpdnotify.
package model

import (
	"sort"
	"strconv"
	"strings"
)

// Tag names with special meaning.
const (
	TagFile   = "file"
	TagTitle  = "Title"
	TagArtist = "Artist"
	TagAlbum  = "Album"
)

// Tag is a single name/value metadata pair as reported by the server.
type Tag struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Track is a snapshot of the currently playing item.
// Title and Artist are optional; an empty string means the server did not report one.
type Track struct {
	File   string `json:"file" yaml:"file"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Artist string `json:"artist,omitempty" yaml:"artist,omitempty"`
	Tags   []Tag  `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// TitleOr returns the title, or fallback if the track has none.
func (t Track) TitleOr(fallback string) string {
	if t.Title == "" {
		return fallback
	}
	return t.Title
}

// Album returns the value of the first tag named exactly "Album", or "".
func (t Track) Album() string {
	v, _ := t.Tag(TagAlbum)
	return v
}

// Tag returns the value of the first tag with the given name.
// Matching is case-sensitive.
func (t Track) Tag(name string) (string, bool) {
	for _, tag := range t.Tags {
		if tag.Name == name {
			return tag.Value, true
		}
	}
	return "", false
}

// IsStream returns true if the track file is a URL rather than a library path.
func (t Track) IsStream() bool {
	return strings.Contains(t.File, "://")
}

// TrackFromAttrs builds a Track from a flat key/value map as returned by
// the MPD currentsong command. Tags are ordered by name so the result is
// deterministic. Returns false if attrs does not describe a song.
func TrackFromAttrs(attrs map[string]string) (Track, bool) {
	file := attrs[TagFile]
	if file == "" {
		return Track{}, false
	}

	track := Track{
		File:   file,
		Title:  attrs[TagTitle],
		Artist: attrs[TagArtist],
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if name == TagFile {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	track.Tags = make([]Tag, 0, len(names))
	for _, name := range names {
		track.Tags = append(track.Tags, Tag{Name: name, Value: attrs[name]})
	}

	return track, true
}

// WithTagValues returns a copy of t in which every tag called name is
// replaced by values, in order, at the position of the first such tag.
// If t has no such tag the values are appended.
func (t Track) WithTagValues(name string, values []string) Track {
	tags := make([]Tag, 0, len(t.Tags)+len(values))
	inserted := false
	for _, tag := range t.Tags {
		if tag.Name != name {
			tags = append(tags, tag)
			continue
		}
		if !inserted {
			for _, v := range values {
				tags = append(tags, Tag{Name: name, Value: v})
			}
			inserted = true
		}
	}
	if !inserted {
		for _, v := range values {
			tags = append(tags, Tag{Name: name, Value: v})
		}
	}
	t.Tags = tags
	return t
}

// PlaybackState is the player state reported by the server.
type PlaybackState int

const (
	StateStopped PlaybackState = iota
	StatePaused
	StatePlaying
)

// String returns the MPD name of the state.
func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "play"
	case StatePaused:
		return "pause"
	default:
		return "stop"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s PlaybackState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParsePlaybackState converts an MPD state string. Unknown values map to StateStopped.
func ParsePlaybackState(s string) PlaybackState {
	switch s {
	case "play":
		return StatePlaying
	case "pause":
		return StatePaused
	default:
		return StateStopped
	}
}

// Status is a point-in-time read of the server's player status.
type Status struct {
	State    PlaybackState     `json:"state" yaml:"state"`
	Volume   int               `json:"volume" yaml:"volume"` // -1 if unknown
	Elapsed  float64           `json:"elapsed,omitempty" yaml:"elapsed,omitempty"`
	Duration float64           `json:"duration,omitempty" yaml:"duration,omitempty"`
	SongID   string            `json:"song_id,omitempty" yaml:"song_id,omitempty"`
	Attrs    map[string]string `json:"-" yaml:"-"`
}

// IsPlaying returns true if the player is currently playing.
func (s Status) IsPlaying() bool {
	return s.State == StatePlaying
}

// StatusFromAttrs builds a Status from the MPD status command response.
func StatusFromAttrs(attrs map[string]string) Status {
	status := Status{
		State:  ParsePlaybackState(attrs["state"]),
		Volume: -1,
		SongID: attrs["songid"],
		Attrs:  attrs,
	}
	if v, err := strconv.Atoi(attrs["volume"]); err == nil {
		status.Volume = v
	}
	if v, err := strconv.ParseFloat(attrs["elapsed"], 64); err == nil {
		status.Elapsed = v
	}
	if v, err := strconv.ParseFloat(attrs["duration"], 64); err == nil {
		status.Duration = v
	}
	return status
}
