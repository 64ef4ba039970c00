package mpd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fhs/gompd/v2/mpd"

	"github.com/jmylchreest/mpdnotify/internal/config"
	"github.com/jmylchreest/mpdnotify/internal/model"
)

// Subsystem is a named category of server-side state change.
type Subsystem string

// Subsystems reported by MPD's idle command.
const (
	SubsystemPlayer   Subsystem = "player"
	SubsystemMixer    Subsystem = "mixer"
	SubsystemOptions  Subsystem = "options"
	SubsystemPlaylist Subsystem = "playlist"
	SubsystemDatabase Subsystem = "database"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("mpd session closed")

// Session is a connection to a playback server.
type Session interface {
	// AwaitChange blocks until one of the subscribed subsystems changes,
	// the connection breaks, or ctx is cancelled.
	AwaitChange(ctx context.Context) (Subsystem, error)
	// Status returns the current player status.
	Status(ctx context.Context) (model.Status, error)
	// CurrentTrack returns the current song, or false if there is none.
	CurrentTrack(ctx context.Context) (model.Track, bool, error)
	// Close releases the connection.
	Close() error
}

// Options configures a connection.
type Options struct {
	Address    string      // host:port or unix socket path
	Password   string      // Empty = no password
	Subsystems []Subsystem // Default: player
}

// OptionsFromConfig builds connection options from the server config section.
func OptionsFromConfig(cfg config.ServerConfig) Options {
	opts := Options{
		Address:  cfg.Address,
		Password: cfg.Password,
	}
	for _, name := range cfg.Events {
		opts.Subsystems = append(opts.Subsystems, Subsystem(name))
	}
	return opts
}

// Network returns the dial network for an address.
func Network(address string) string {
	if strings.HasPrefix(address, "/") || strings.HasPrefix(address, "@") {
		return "unix"
	}
	return "tcp"
}

// Client is a Session backed by two MPD connections: one parked in idle
// for change events and one for queries, since MPD does not answer queries
// on an idling connection.
type Client struct {
	opts    Options
	network string
	logger  *slog.Logger

	watcher *mpd.Watcher
	conn    *mpd.Client
	closed  bool
}

var _ Session = (*Client)(nil)

// Connect opens a session. It does not retry.
func Connect(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(opts.Subsystems) == 0 {
		opts.Subsystems = []Subsystem{SubsystemPlayer}
	}

	c := &Client{
		opts:    opts,
		network: Network(opts.Address),
		logger:  logger.With("component", "mpd", "address", opts.Address),
	}

	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.conn = conn

	names := make([]string, len(opts.Subsystems))
	for i, s := range opts.Subsystems {
		names[i] = string(s)
	}
	watcher, err := mpd.NewWatcher(c.network, opts.Address, opts.Password, names...)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start idle watcher: %w", err)
	}
	c.watcher = watcher

	c.logger.Info("connected to mpd", "subsystems", names)
	return c, nil
}

// dial opens the query connection.
func (c *Client) dial() (*mpd.Client, error) {
	var (
		conn *mpd.Client
		err  error
	)
	if c.opts.Password != "" {
		conn, err = mpd.DialAuthenticated(c.network, c.opts.Address, c.opts.Password)
	} else {
		conn, err = mpd.Dial(c.network, c.opts.Address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mpd at %s: %w", c.opts.Address, err)
	}
	return conn, nil
}

// AwaitChange blocks until the watcher reports a change.
func (c *Client) AwaitChange(ctx context.Context) (Subsystem, error) {
	if c.closed {
		return "", ErrClosed
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case name, ok := <-c.watcher.Event:
		if !ok {
			return "", ErrClosed
		}
		c.logger.Debug("subsystem changed", "subsystem", name)
		return Subsystem(name), nil
	case err, ok := <-c.watcher.Error:
		if !ok {
			return "", ErrClosed
		}
		return "", fmt.Errorf("idle failed: %w", err)
	}
}

// queryConn returns a live query connection. MPD drops connections that
// have been quiet longer than its connection_timeout, so the connection is
// pinged first and redialled once if the ping fails.
func (c *Client) queryConn(ctx context.Context) (*mpd.Client, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.conn != nil {
		if err := c.conn.Ping(); err == nil {
			return c.conn, nil
		}
		c.logger.Debug("query connection stale, redialling")
		_ = c.conn.Close()
		c.conn = nil
	}

	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return conn, nil
}

// Status queries the player status.
func (c *Client) Status(ctx context.Context) (model.Status, error) {
	conn, err := c.queryConn(ctx)
	if err != nil {
		return model.Status{}, err
	}

	attrs, err := conn.Status()
	if err != nil {
		return model.Status{}, fmt.Errorf("status query failed: %w", err)
	}
	return model.StatusFromAttrs(attrs), nil
}

// CurrentTrack queries the current song.
func (c *Client) CurrentTrack(ctx context.Context) (model.Track, bool, error) {
	conn, err := c.queryConn(ctx)
	if err != nil {
		return model.Track{}, false, err
	}

	attrs, err := conn.CurrentSong()
	if err != nil {
		return model.Track{}, false, fmt.Errorf("currentsong query failed: %w", err)
	}

	track, ok := model.TrackFromAttrs(attrs)
	if !ok {
		return track, false, nil
	}

	// Attrs keeps only the last value of a repeated tag
	albums, err := conn.Command("currentsong").Strings(model.TagAlbum)
	if err != nil {
		return model.Track{}, false, fmt.Errorf("currentsong album query failed: %w", err)
	}
	// The song may have changed between the two queries
	if len(albums) > 1 && albums[len(albums)-1] == attrs[model.TagAlbum] {
		track = track.WithTagValues(model.TagAlbum, albums)
	}
	return track, true, nil
}

// Close closes both connections.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if c.watcher != nil {
		if err := c.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close watcher: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}

	c.logger.Debug("mpd session closed")
	return errors.Join(errs...)
}
