package domain

import "time"

// LifecycleEvent records one state transition of a component.
// Events are published for decoupled consumers (journal, diagnostics).
type LifecycleEvent struct {
	ID        string             `json:"id"`
	Kind      LifecycleEventKind `json:"kind"`
	Subject   string             `json:"subject"`
	From      string             `json:"from"`
	To        string             `json:"to"`
	Detail    string             `json:"detail,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// LifecycleEventKind identifies the component that emitted the event.
type LifecycleEventKind string

const (
	LifecycleEventRequest  LifecycleEventKind = "request.phase"
	LifecycleEventSurface  LifecycleEventKind = "surface.status"
	LifecycleEventBoundary LifecycleEventKind = "boundary.failure"
	LifecycleEventResource LifecycleEventKind = "resource.slot"
)
