package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/mpdnotify/internal/config"
)

// ErrNoBackend is returned when no notification backend can be initialised.
var ErrNoBackend = errors.New("no notification backend available")

// Notifier sends notifications to the OS notification surface.
type Notifier interface {
	// Send shows a notification. It is synchronous and may fail.
	Send(ctx context.Context, p Payload) error
	// Name identifies the backend in logs.
	Name() string
}

// New returns the notifier for the configured backend. In auto mode the
// D-Bus backend is preferred and beeep is used when no session bus is
// reachable.
func New(backend string, logger *slog.Logger) (Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch backend {
	case config.BackendDBus:
		return NewDBusNotifier(logger)
	case config.BackendBeeep:
		return NewBeeepNotifier(logger), nil
	case config.BackendAuto, "":
		n, err := NewDBusNotifier(logger)
		if err == nil {
			return n, nil
		}
		logger.Warn("D-Bus notifications unavailable, falling back to beeep", "error", err)
		return NewBeeepNotifier(logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrNoBackend, backend)
	}
}
