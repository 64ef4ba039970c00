package daemon

import (
	"context"
	"time"

	"github.com/jmylchreest/mpdnotify/internal/config"
)

// Backoff is a bounded exponential reconnect schedule.
type Backoff struct {
	Initial     time.Duration
	Max         time.Duration
	MaxAttempts int // 0 = unlimited
}

// BackoffFromConfig builds a Backoff from the reconnect config section.
func BackoffFromConfig(cfg config.ReconnectConfig) Backoff {
	return Backoff{
		Initial:     cfg.Initial.Duration(),
		Max:         cfg.Max.Duration(),
		MaxAttempts: cfg.MaxAttempts,
	}
}

// Delay returns the wait before retry number attempt (0-based): Initial
// doubled per attempt, capped at Max.
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Initial <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	// Past 30 doublings any sane Initial exceeds Max
	if attempt > 30 {
		return b.Max
	}
	d := b.Initial * time.Duration(1<<attempt)
	if b.Max > 0 && (d > b.Max || d <= 0) {
		return b.Max
	}
	return d
}

// Exhausted returns true once attempts consecutive failures reach MaxAttempts.
func (b Backoff) Exhausted(attempts int) bool {
	return b.MaxAttempts > 0 && attempts >= b.MaxAttempts
}

// sleepWithContext waits for delay or until ctx is done.
func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
