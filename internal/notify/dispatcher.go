package notify

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/mpdnotify/internal/albumart"
	"github.com/jmylchreest/mpdnotify/internal/model"
)

// EmbeddedArt configures the embedded-picture fallback.
type EmbeddedArt struct {
	Enabled bool
	MaxSize int
}

// Dispatcher resolves artwork for a track, builds its notification, and
// hands it to a Notifier.
type Dispatcher struct {
	notifier  Notifier
	resolver  *albumart.Resolver
	musicRoot string
	logger    *slog.Logger

	mu       sync.RWMutex
	opts     Options
	embedded EmbeddedArt
}

// NewDispatcher creates a Dispatcher. musicRoot is the local directory that
// track paths are relative to.
func NewDispatcher(notifier Notifier, resolver *albumart.Resolver, musicRoot string, opts Options, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = albumart.NewResolver(nil, logger)
	}
	return &Dispatcher{
		notifier:  notifier,
		resolver:  resolver,
		musicRoot: musicRoot,
		logger:    logger.With("component", "dispatcher"),
		opts:      opts,
	}
}

// SetEmbeddedArt configures the embedded-picture fallback.
func (d *Dispatcher) SetEmbeddedArt(e EmbeddedArt) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.embedded = e
}

// UpdateOptions replaces the notification options. Safe to call while
// dispatches are in flight.
func (d *Dispatcher) UpdateOptions(opts Options) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts = opts
}

// Options returns the current notification options.
func (d *Dispatcher) Options() Options {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.opts
}

// ResolveArt returns the artwork path for a track, if any.
func (d *Dispatcher) ResolveArt(track model.Track) (string, bool) {
	dir, ok := albumart.AlbumDir(d.musicRoot, track)
	if !ok {
		return "", false
	}
	return d.resolver.Resolve(dir)
}

// Prepare resolves artwork and builds the payload for a track.
func (d *Dispatcher) Prepare(track model.Track) Payload {
	d.mu.RLock()
	opts := d.opts
	embedded := d.embedded
	d.mu.RUnlock()

	art, _ := d.ResolveArt(track)
	p := BuildPayload(track, art, opts)
	p.ID = newDispatchID()

	if !p.HasArt && embedded.Enabled && !track.IsStream() {
		path := filepath.Join(d.musicRoot, filepath.FromSlash(track.File))
		img, err := albumart.ExtractEmbedded(path, embedded.MaxSize)
		switch {
		case err == nil:
			p.Image = img
			d.logger.Debug("using embedded artwork", "file", path,
				"width", img.Width, "height", img.Height, "size", humanize.Bytes(uint64(len(img.Data))))
		case errors.Is(err, albumart.ErrNoEmbeddedArt):
			d.logger.Debug("no embedded artwork", "file", path)
		default:
			d.logger.Debug("embedded artwork unavailable", "file", path, "error", err)
		}
	}

	return p
}

// Dispatch notifies about a track. Each call sends a new notification; no
// deduplication is done.
func (d *Dispatcher) Dispatch(ctx context.Context, track model.Track) error {
	p := d.Prepare(track)

	art := ""
	if p.HasArt {
		art = p.Icon
	}
	d.logger.Info("now playing",
		"dispatch_id", p.ID,
		"title", p.Summary,
		"artist", track.Artist,
		"album", track.Album(),
		"art", art,
	)

	return d.Send(ctx, p)
}

// Send hands a prepared payload to the notifier.
func (d *Dispatcher) Send(ctx context.Context, p Payload) error {
	return d.notifier.Send(ctx, p)
}

// newDispatchID returns a ULID for log correlation.
func newDispatchID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return ""
	}
	return id.String()
}
