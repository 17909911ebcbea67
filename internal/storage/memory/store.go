package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

const defaultListLimit = 100

// Store is an in-memory implementation of ports.EventStore
type Store struct {
	mu     sync.RWMutex
	events []*domain.LifecycleEvent
}

var _ ports.EventStore = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{}
}

func (s *Store) AppendEvent(ctx context.Context, event *domain.LifecycleEvent) error {
	if event == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	stored := *event
	s.events = append(s.events, &stored)
	return nil
}

func (s *Store) ListEvents(ctx context.Context, subject string, limit int) ([]*domain.LifecycleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = defaultListLimit
	}

	result := []*domain.LifecycleEvent{}
	for _, evt := range s.events {
		if subject != "" && evt.Subject != subject {
			continue
		}
		copied := *evt
		result = append(result, &copied)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *Store) Close() error {
	return nil
}
