package orchestrator

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
)

// Option is a functional option for configuring an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithPublisher publishes every phase change as a lifecycle event.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(o *Orchestrator) {
		o.publisher = publisher
	}
}

// WithTracer overrides the tracer used for submit spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

// WithName names the submission surface in logs and events.
func WithName(name string) Option {
	return func(o *Orchestrator) {
		o.name = name
	}
}

// OnReset registers fn to run after every Reset, once the handles are
// released and observers have been notified.
func OnReset(fn func()) Option {
	return func(o *Orchestrator) {
		o.onReset = fn
	}
}
