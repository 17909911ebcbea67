// Package ports defines the interfaces the generation core depends on.
package ports

import (
	"context"

	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

// EventPublisher publishes lifecycle events to decoupled consumers.
type EventPublisher interface {
	// Publish sends a lifecycle event
	Publish(ctx context.Context, event *domain.LifecycleEvent) error

	// Close releases publisher resources
	Close() error
}

// EventStore is an append-only journal of lifecycle events.
type EventStore interface {
	// AppendEvent records an event
	AppendEvent(ctx context.Context, event *domain.LifecycleEvent) error

	// ListEvents returns events for a subject in insertion order.
	// An empty subject lists every subject. A zero limit defaults to 100.
	ListEvents(ctx context.Context, subject string, limit int) ([]*domain.LifecycleEvent, error)

	// Close closes the storage connection
	Close() error
}
