// Package preview owns the ephemeral resources backing the input preview and
// the generated result.
//
// Each logical slot holds at most one live handle. Acquiring a slot revokes
// the previous handle inside the same critical section, so there is never a
// moment where two handles for one slot are reachable. Close releases every
// handle the manager created.
package preview

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

const referenceScheme = "blob:"

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for slot changes.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithPublisher publishes slot changes as lifecycle events.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(m *Manager) {
		m.publisher = publisher
	}
}

// WithNow overrides the clock used for CreatedAt.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager is the single owner of resource handles.
type Manager struct {
	mu        sync.Mutex
	store     ObjectStore
	slots     map[domain.Slot]*domain.ResourceHandle
	closed    bool
	now       func() time.Time
	logger    *slog.Logger
	publisher ports.EventPublisher
}

// NewManager creates a manager backed by store. A nil store uses a MemoryStore.
func NewManager(store ObjectStore, opts ...Option) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	m := &Manager{
		store:  store,
		slots:  make(map[domain.Slot]*domain.ResourceHandle),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire publishes data in slot, sniffing its content type.
func (m *Manager) Acquire(slot domain.Slot, data []byte) (*domain.ResourceHandle, error) {
	return m.AcquireTyped(slot, data, "")
}

// AcquireTyped publishes data in slot with an explicit content type and
// releases the handle previously held by the slot.
func (m *Manager) AcquireTyped(slot domain.Slot, data []byte, mimeType string) (*domain.ResourceHandle, error) {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, domain.ErrClosed
	}

	handle := &domain.ResourceHandle{
		Slot:       slot,
		Reference:  referenceScheme + uuid.New().String(),
		SourceData: data,
		MIMEType:   mimeType,
		CreatedAt:  m.now(),
	}

	var previous string
	if prev, ok := m.slots[slot]; ok {
		previous = prev.Reference
		m.store.Revoke(prev.Reference)
	}
	m.store.Register(handle.Reference, data, mimeType)
	m.slots[slot] = handle
	m.mu.Unlock()

	m.logger.Debug("resource acquired",
		slog.String("slot", string(slot)),
		slog.String("reference", handle.Reference),
		slog.String("released", previous),
		slog.Int("bytes", len(data)))
	m.publish(slot, previous, handle.Reference)

	return handle, nil
}

// Release revokes the handle held by slot. It is a no-op for an empty slot.
func (m *Manager) Release(slot domain.Slot) {
	m.mu.Lock()
	prev, ok := m.slots[slot]
	if ok {
		m.store.Revoke(prev.Reference)
		delete(m.slots, slot)
	}
	m.mu.Unlock()

	if ok {
		m.logger.Debug("resource released",
			slog.String("slot", string(slot)),
			slog.String("reference", prev.Reference))
		m.publish(slot, prev.Reference, "")
	}
}

// ReleaseAll revokes every live handle.
func (m *Manager) ReleaseAll() {
	for _, slot := range m.liveSlots() {
		m.Release(slot)
	}
}

// Close releases every handle and rejects further acquisitions.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.ReleaseAll()
	return nil
}

// Handle returns the live handle for slot.
func (m *Manager) Handle(slot domain.Slot) (*domain.ResourceHandle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.slots[slot]
	return h, ok
}

// Resolve returns the bytes behind a live reference.
func (m *Manager) Resolve(reference string) ([]byte, bool) {
	data, _, ok := m.store.Lookup(reference)
	return data, ok
}

// LiveCount reports the number of live handles owned by this manager.
func (m *Manager) LiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

func (m *Manager) liveSlots() []domain.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	slots := make([]domain.Slot, 0, len(m.slots))
	for slot := range m.slots {
		slots = append(slots, slot)
	}
	return slots
}

func (m *Manager) publish(slot domain.Slot, from, to string) {
	if m.publisher == nil {
		return
	}
	err := m.publisher.Publish(context.Background(), &domain.LifecycleEvent{
		Kind:    domain.LifecycleEventResource,
		Subject: string(slot),
		From:    from,
		To:      to,
	})
	if err != nil {
		m.logger.Warn("failed to publish resource event",
			slog.String("slot", string(slot)),
			slog.String("error", err.Error()))
	}
}

