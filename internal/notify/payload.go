// Package notify turns tracks into desktop notifications and sends them to
// the OS notification surface.
package notify

import (
	"time"

	"github.com/jmylchreest/mpdnotify/internal/albumart"
	"github.com/jmylchreest/mpdnotify/internal/config"
	"github.com/jmylchreest/mpdnotify/internal/model"
)

// NoTitle is the summary used for tracks without a title.
const NoTitle = "No Title"

// Options holds the per-notification settings that do not depend on the track.
type Options struct {
	AppName      string
	FallbackIcon string
	GroupKey     string
	Timeout      time.Duration
	Urgency      byte
	Transient    bool
}

// DefaultOptions returns options matching the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig().Notification)
}

// OptionsFromConfig builds Options from the notification config section.
func OptionsFromConfig(cfg config.NotificationConfig) Options {
	return Options{
		AppName:      cfg.AppName,
		FallbackIcon: cfg.FallbackIcon,
		GroupKey:     cfg.GroupKey,
		Timeout:      cfg.Timeout.Duration(),
		Urgency:      cfg.UrgencyLevel(),
		Transient:    cfg.Transient,
	}
}

// Payload is a notification ready to send.
type Payload struct {
	ID        string // Dispatch id, for log correlation
	AppName   string
	Summary   string
	Body      string
	Icon      string // Artwork path or named icon
	HasArt    bool   // Icon is a resolved artwork path
	GroupKey  string
	Timeout   time.Duration
	Urgency   byte
	Transient bool
	Image     *albumart.Image // Optional raw artwork
}

// BuildPayload assembles the notification for a track. art is the resolved
// artwork path, or "" if none was found.
func BuildPayload(track model.Track, art string, opts Options) Payload {
	p := Payload{
		AppName:   opts.AppName,
		Summary:   track.TitleOr(NoTitle),
		Body:      track.Artist + "\n" + track.Album(),
		Icon:      opts.FallbackIcon,
		GroupKey:  opts.GroupKey,
		Timeout:   opts.Timeout,
		Urgency:   opts.Urgency,
		Transient: opts.Transient,
	}
	if art != "" {
		p.Icon = art
		p.HasArt = true
	}
	return p
}
