// Package direct provides a direct event publisher that writes to storage.
package direct

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

// Publisher implements ports.EventPublisher by writing directly to an event store.
// This is the default implementation for a single client instance.
type Publisher struct {
	store ports.EventStore
}

// NewPublisher creates a new direct event publisher.
func NewPublisher(store ports.EventStore) (*Publisher, error) {
	if store == nil {
		return nil, fmt.Errorf("event store required")
	}

	return &Publisher{
		store: store,
	}, nil
}

// Publish writes a lifecycle event directly to storage, assigning an ID and
// timestamp when the caller left them empty.
func (p *Publisher) Publish(ctx context.Context, event *domain.LifecycleEvent) error {
	if event == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = "evt_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return p.store.AppendEvent(ctx, event)
}

// Close is a no-op for direct publisher; the store is owned by the caller.
func (p *Publisher) Close() error {
	return nil
}
