// Package orchestrator drives one generation request at a time through the
// validate, submit, await and settle lifecycle.
//
// At most one request is in flight per Orchestrator. Responses that arrive
// after Reset or Close belong to a stale lifecycle and are discarded before
// their bytes can be published as a resource.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptrace"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
	"github.com/tjfontaine/ghibli-studio/internal/domain"
	"github.com/tjfontaine/ghibli-studio/internal/input"
)

const tracerName = "github.com/tjfontaine/ghibli-studio/internal/orchestrator"

// ErrStaleResponse is returned by Submit when the lifecycle that issued the
// request was reset or closed before the response arrived.
var ErrStaleResponse = errors.New("response discarded: request lifecycle ended")

// Generator performs one generation call against the remote service.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Artifact, error)
}

// ResultStore owns the resource handles published by the orchestrator.
type ResultStore interface {
	AcquireTyped(slot domain.Slot, data []byte, mimeType string) (*domain.ResourceHandle, error)
	ReleaseAll()
}

// Observer is notified after every state change. Observers run in the order
// the changes happened and may read State, but must not call Submit, Reset or
// Close.
type Observer func(from, to domain.GenerationState)

type change struct {
	from, to domain.GenerationState
}

// Orchestrator is the request state machine.
type Orchestrator struct {
	mu        sync.Mutex
	client    Generator
	resources ResultStore
	state     domain.GenerationState
	epoch     uint64
	closed    bool
	// dispatching is set while the generator call runs, including after a
	// Reset has made that call stale.
	dispatching bool
	// ticket orders change batches. Guarded by mu.
	ticket uint64

	emitMu   sync.Mutex
	emitCond *sync.Cond
	served   uint64

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObs   int

	name      string
	logger    *slog.Logger
	publisher ports.EventPublisher
	tracer    trace.Tracer
	onReset   func()
}

// New creates an Orchestrator in the idle phase.
func New(client Generator, resources ResultStore, opts ...Option) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("generator required")
	}
	if resources == nil {
		return nil, errors.New("result store required")
	}
	o := &Orchestrator{
		client:    client,
		resources: resources,
		state:     domain.GenerationState{Phase: domain.PhaseIdle},
		observers: make(map[int]Observer),
		name:      "generation",
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	o.emitCond = sync.NewCond(&o.emitMu)
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() domain.GenerationState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Busy reports whether a request is in flight. A call made stale by Reset
// keeps the orchestrator busy until it returns.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Phase.InFlight() || o.dispatching
}

// Subscribe registers fn for state changes and returns a func that removes it.
func (o *Orchestrator) Subscribe(fn Observer) func() {
	o.obsMu.Lock()
	id := o.nextObs
	o.nextObs++
	o.observers[id] = fn
	o.obsMu.Unlock()

	return func() {
		o.obsMu.Lock()
		delete(o.observers, id)
		o.obsMu.Unlock()
	}
}

// Submit runs req through the full lifecycle and returns the published result.
//
// A second Submit while one is in flight returns domain.ErrSubmissionInFlight
// without touching state or the network. That includes a call abandoned by
// Reset that has not returned yet. Validation failures never reach the
// generator.
func (o *Orchestrator) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.ResourceHandle, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, domain.ErrClosed
	}
	if o.state.Phase.InFlight() || o.dispatching {
		o.mu.Unlock()
		return nil, domain.ErrSubmissionInFlight
	}

	changes := []change{o.moveLocked(domain.GenerationState{Phase: domain.PhaseValidating})}
	if verr := input.Validate(req); verr != nil {
		changes = append(changes, o.moveLocked(domain.GenerationState{Phase: domain.PhaseError, Err: verr}))
		o.unlockAndEmit(ctx, changes)
		return nil, verr
	}
	changes = append(changes, o.moveLocked(domain.GenerationState{Phase: domain.PhaseSubmitting}))
	epoch := o.epoch
	o.dispatching = true
	o.unlockAndEmit(ctx, changes)

	ctx, span := o.tracer.Start(ctx, "orchestrator.Submit",
		trace.WithAttributes(attribute.String("generation.mode", string(req.Mode))))
	defer span.End()

	clientTrace := &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) {
			o.markAwaiting(ctx, epoch)
		},
	}
	artifact, err := o.client.Generate(httptrace.WithClientTrace(ctx, clientTrace), req)

	o.mu.Lock()
	o.dispatching = false
	if o.closed || o.epoch != epoch {
		o.mu.Unlock()
		o.logger.Debug("discarding stale response", slog.String("surface", o.name))
		span.SetStatus(codes.Error, ErrStaleResponse.Error())
		return nil, ErrStaleResponse
	}

	changes = nil
	if o.state.Phase == domain.PhaseSubmitting {
		changes = append(changes, o.moveLocked(domain.GenerationState{Phase: domain.PhaseAwaitingResponse}))
	}

	if err != nil {
		gerr, ok := domain.AsGenerationError(err)
		if !ok {
			gerr = domain.ErrNetwork(err)
		}
		changes = append(changes, o.moveLocked(domain.GenerationState{Phase: domain.PhaseError, Err: gerr}))
		o.unlockAndEmit(ctx, changes)

		span.RecordError(gerr)
		span.SetStatus(codes.Error, string(gerr.Type))
		o.logger.Warn("generation failed",
			slog.String("surface", o.name),
			slog.String("type", string(gerr.Type)),
			slog.String("error", gerr.Error()))
		return nil, gerr
	}

	handle, err := o.resources.AcquireTyped(domain.SlotResult, artifact.Data, artifact.MIMEType)
	if err != nil {
		gerr := &domain.GenerationError{
			Type:    domain.ErrorTypeResource,
			Message: "failed to store generated image",
			Err:     err,
		}
		changes = append(changes, o.moveLocked(domain.GenerationState{Phase: domain.PhaseError, Err: gerr}))
		o.unlockAndEmit(ctx, changes)
		span.RecordError(gerr)
		span.SetStatus(codes.Error, string(gerr.Type))
		return nil, gerr
	}
	changes = append(changes, o.moveLocked(domain.GenerationState{Phase: domain.PhaseSuccess, Result: handle}))
	o.unlockAndEmit(ctx, changes)

	span.SetAttributes(
		attribute.String("generation.mime_type", handle.MIMEType),
		attribute.Int("generation.bytes", len(handle.SourceData)))
	o.logger.Info("generation succeeded",
		slog.String("surface", o.name),
		slog.String("reference", handle.Reference))
	return handle, nil
}

// Reset returns to idle from any phase and releases every handle. An in-flight
// response is discarded when it arrives, and Submit stays rejected until then.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.epoch++
	var changes []change
	if o.state.Phase != domain.PhaseIdle {
		changes = append(changes, o.moveLocked(domain.GenerationState{Phase: domain.PhaseIdle}))
	}
	o.resources.ReleaseAll()
	o.unlockAndEmit(context.Background(), changes)

	if o.onReset != nil {
		o.onReset()
	}
}

// Close tears the orchestrator down. Further Submit calls return domain.ErrClosed.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.epoch++
	var changes []change
	if o.state.Phase != domain.PhaseIdle {
		changes = append(changes, o.moveLocked(domain.GenerationState{Phase: domain.PhaseIdle}))
	}
	o.resources.ReleaseAll()
	o.unlockAndEmit(context.Background(), changes)
	return nil
}

func (o *Orchestrator) markAwaiting(ctx context.Context, epoch uint64) {
	o.mu.Lock()
	if o.closed || o.epoch != epoch || o.state.Phase != domain.PhaseSubmitting {
		o.mu.Unlock()
		return
	}
	c := o.moveLocked(domain.GenerationState{Phase: domain.PhaseAwaitingResponse})
	o.unlockAndEmit(ctx, []change{c})
}

// moveLocked applies next. Callers hold o.mu.
func (o *Orchestrator) moveLocked(next domain.GenerationState) change {
	if _, err := Transition(o.state.Phase, next.Phase); err != nil {
		o.logger.Error("rejected state change",
			slog.String("surface", o.name),
			slog.String("error", err.Error()))
		return change{from: o.state, to: o.state}
	}
	c := change{from: o.state, to: next}
	o.state = next
	return c
}

// unlockAndEmit releases o.mu and notifies observers of changes. Batches are
// ticketed under o.mu and emitted strictly in ticket order, so the transport
// goroutine's awaiting change can never be observed after the settled one.
func (o *Orchestrator) unlockAndEmit(ctx context.Context, changes []change) {
	if len(changes) == 0 {
		o.mu.Unlock()
		return
	}
	ticket := o.ticket
	o.ticket++
	o.mu.Unlock()

	o.emitMu.Lock()
	for o.served != ticket {
		o.emitCond.Wait()
	}
	o.emitMu.Unlock()

	defer func() {
		o.emitMu.Lock()
		o.served++
		o.emitCond.Broadcast()
		o.emitMu.Unlock()
	}()
	o.emit(ctx, changes)
}

func (o *Orchestrator) emit(ctx context.Context, changes []change) {
	o.obsMu.RLock()
	observers := make([]Observer, 0, len(o.observers))
	for _, fn := range o.observers {
		observers = append(observers, fn)
	}
	o.obsMu.RUnlock()

	for _, c := range changes {
		if c.from.Phase == c.to.Phase {
			continue
		}
		o.logger.Debug("phase changed",
			slog.String("surface", o.name),
			slog.String("from", c.from.Phase.String()),
			slog.String("to", c.to.Phase.String()))
		for _, fn := range observers {
			fn(c.from, c.to)
		}
		o.publish(ctx, c)
	}
}

func (o *Orchestrator) publish(ctx context.Context, c change) {
	if o.publisher == nil {
		return
	}
	err := o.publisher.Publish(context.WithoutCancel(ctx), &domain.LifecycleEvent{
		Kind:    domain.LifecycleEventRequest,
		Subject: o.name,
		From:    c.from.Phase.String(),
		To:      c.to.Phase.String(),
		Detail:  c.to.ErrorMessage(),
	})
	if err != nil {
		o.logger.Warn("failed to publish phase event",
			slog.String("surface", o.name),
			slog.String("error", err.Error()))
	}
}
