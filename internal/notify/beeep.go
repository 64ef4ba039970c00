package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// BeeepNotifier sends notifications through beeep, for systems without a
// freedesktop notification server. It ignores timeout and grouping.
type BeeepNotifier struct {
	logger *slog.Logger
	notify func(title, message, icon string) error
}

// NewBeeepNotifier creates a BeeepNotifier.
func NewBeeepNotifier(logger *slog.Logger) *BeeepNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &BeeepNotifier{
		logger: logger.With("backend", "beeep"),
		notify: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
	}
}

// Name returns the backend name.
func (n *BeeepNotifier) Name() string {
	return "beeep"
}

// Send shows the notification.
func (n *BeeepNotifier) Send(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.notify(p.Summary, p.Body, p.Icon); err != nil {
		return fmt.Errorf("beeep notify failed: %w", err)
	}

	n.logger.Debug("notification sent", "dispatch_id", p.ID)
	return nil
}
