package boundary

import (
	"log/slog"
	"time"

	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
)

type settings struct {
	name      string
	logger    *slog.Logger
	publisher ports.EventPublisher
	now       func() time.Time
	onError   func(*Failure)
	onReset   func()
}

// Option configures a Boundary.
type Option func(*settings)

// WithName names the wrapped subtree in logs and events.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithPublisher publishes caught failures as lifecycle events.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *settings) {
		s.publisher = publisher
	}
}

// WithNow overrides the clock used for Failure.At.
func WithNow(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// OnError registers a hook that receives every caught failure, typically an
// error tracker.
func OnError(fn func(*Failure)) Option {
	return func(s *settings) {
		s.onError = fn
	}
}

// OnReset registers a hook run when the boundary is reset.
func OnReset(fn func()) Option {
	return func(s *settings) {
		s.onReset = fn
	}
}
