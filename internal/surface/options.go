package surface

import (
	"log/slog"
	"time"

	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
)

const (
	DefaultRestoreDelay   = 500 * time.Millisecond
	DefaultFailureTimeout = 5 * time.Second
)

// Option configures a Guardian.
type Option func(*Guardian)

// WithRestoreDelay sets how long after a loss the restore attempt is issued.
func WithRestoreDelay(d time.Duration) Option {
	return func(g *Guardian) {
		g.restoreDelay = d
	}
}

// WithFailureTimeout sets the deadline, measured from the loss, after which
// an unrestored surface is marked failed.
func WithFailureTimeout(d time.Duration) Option {
	return func(g *Guardian) {
		g.failureTimeout = d
	}
}

// WithClock overrides the clock used for timestamps and timers.
func WithClock(clock Clock) Option {
	return func(g *Guardian) {
		g.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guardian) {
		g.logger = logger
	}
}

// WithPublisher publishes every status change as a lifecycle event.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(g *Guardian) {
		g.publisher = publisher
	}
}

// WithName names the guarded surface in logs and events.
func WithName(name string) Option {
	return func(g *Guardian) {
		g.name = name
	}
}
