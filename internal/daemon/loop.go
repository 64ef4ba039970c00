package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/mpdnotify/internal/model"
	"github.com/jmylchreest/mpdnotify/internal/mpd"
)

// ErrReconnectExhausted is returned by Run when MaxAttempts consecutive
// connection attempts have failed.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// ConnectFunc opens a new session.
type ConnectFunc func(ctx context.Context) (mpd.Session, error)

// Dispatcher sends the notification for a track.
type Dispatcher interface {
	Dispatch(ctx context.Context, track model.Track) error
}

// LoopOptions configures a Loop.
type LoopOptions struct {
	Backoff         Backoff
	NotifyOnConnect bool // Notify once after (re)connect if already playing
}

// Loop waits for player changes and dispatches a notification whenever a
// track is playing. It owns the session and replaces it when it breaks.
type Loop struct {
	connect    ConnectFunc
	dispatcher Dispatcher
	opts       LoopOptions
	logger     *slog.Logger

	mu               sync.RWMutex
	onConnectedCb    func()
	onDisconnectedCb func(err error)
}

// NewLoop creates a Loop.
func NewLoop(connect ConnectFunc, dispatcher Dispatcher, opts LoopOptions, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		connect:    connect,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     logger.With("component", "loop"),
	}
}

// SetConnectedCallback sets a callback invoked after each successful connect.
func (l *Loop) SetConnectedCallback(cb func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onConnectedCb = cb
}

// SetDisconnectedCallback sets a callback invoked when a session breaks.
func (l *Loop) SetDisconnectedCallback(cb func(err error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onDisconnectedCb = cb
}

// Run connects and serves until ctx is cancelled, which returns nil.
// Connection failures are retried with backoff; Run returns
// ErrReconnectExhausted once the attempt limit is reached.
func (l *Loop) Run(ctx context.Context) error {
	failures := 0

	for {
		session, err := l.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			if l.opts.Backoff.Exhausted(failures) {
				return fmt.Errorf("%w after %d attempts: %w", ErrReconnectExhausted, failures, err)
			}
			delay := l.opts.Backoff.Delay(failures - 1)
			l.logger.Warn("failed to connect to mpd, retrying",
				"error", err, "attempt", failures, "retry_in", delay)
			if sleepWithContext(ctx, delay) != nil {
				return nil
			}
			continue
		}

		failures = 0
		l.mu.RLock()
		connectedCb := l.onConnectedCb
		disconnectedCb := l.onDisconnectedCb
		l.mu.RUnlock()
		if connectedCb != nil {
			connectedCb()
		}

		err = l.serve(ctx, session)
		if closeErr := session.Close(); closeErr != nil {
			l.logger.Debug("failed to close session", "error", closeErr)
		}
		if ctx.Err() != nil {
			return nil
		}

		l.logger.Warn("mpd connection lost, reconnecting", "error", err)
		if disconnectedCb != nil {
			disconnectedCb(err)
		}
		if sleepWithContext(ctx, l.opts.Backoff.Delay(0)) != nil {
			return nil
		}
	}
}

// serve runs the idle loop on one session until it fails.
func (l *Loop) serve(ctx context.Context, session mpd.Session) error {
	if l.opts.NotifyOnConnect {
		if err := l.HandleChange(ctx, session); err != nil {
			return err
		}
	}

	for {
		subsystem, err := session.AwaitChange(ctx)
		if err != nil {
			return err
		}
		l.logger.Debug("woke on change", "subsystem", subsystem)

		if err := l.HandleChange(ctx, session); err != nil {
			return err
		}
	}
}

// HandleChange queries the session after a change and dispatches a
// notification if a track is playing. Only protocol errors are returned;
// dispatch failures are logged.
func (l *Loop) HandleChange(ctx context.Context, session mpd.Session) error {
	status, err := session.Status(ctx)
	if err != nil {
		return fmt.Errorf("status query failed: %w", err)
	}
	if !status.IsPlaying() {
		l.logger.Debug("not playing, skipping", "state", status.State)
		return nil
	}

	track, ok, err := session.CurrentTrack(ctx)
	if err != nil {
		return fmt.Errorf("current song query failed: %w", err)
	}
	if !ok {
		l.logger.Debug("playing but no current song")
		return nil
	}

	if err := l.dispatcher.Dispatch(ctx, track); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Warn("failed to send notification", "file", track.File, "error", err)
	}
	return nil
}
