// Package boundary isolates failures raised while rendering a subtree.
//
// A Boundary runs its render function, catches a returned error or a panic,
// records it and serves a fallback until Reset is called. Failures never
// propagate past the boundary. Panics raised by the fallback itself are not
// caught since they originate outside the wrapped subtree.
package boundary

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

// RenderFunc renders the wrapped subtree.
type RenderFunc[T any] func(ctx context.Context) (T, error)

// FallbackFunc renders the replacement shown while the boundary holds a failure.
type FallbackFunc[T any] func(f *Failure) T

// Failure is one caught rendering failure.
type Failure struct {
	Err       error
	Stack     []byte
	Recovered any
	At        time.Time
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Panicked reports whether the failure was a recovered panic.
func (f *Failure) Panicked() bool {
	return f.Recovered != nil
}

// Boundary wraps one subtree.
type Boundary[T any] struct {
	mu       sync.Mutex
	render   RenderFunc[T]
	fallback FallbackFunc[T]
	failure  *Failure
	settings
}

// New creates a boundary around render.
func New[T any](render RenderFunc[T], fallback FallbackFunc[T], opts ...Option) *Boundary[T] {
	b := &Boundary[T]{
		render:   render,
		fallback: fallback,
		settings: settings{
			name:   "boundary",
			logger: slog.Default(),
			now:    time.Now,
		},
	}
	for _, opt := range opts {
		opt(&b.settings)
	}
	return b
}

// Render runs the subtree, or the fallback while a failure is held.
func (b *Boundary[T]) Render(ctx context.Context) T {
	if f := b.Failure(); f != nil {
		return b.fallback(f)
	}

	v, f := b.run(ctx)
	if f == nil {
		return v
	}

	b.mu.Lock()
	b.failure = f
	b.mu.Unlock()

	b.logger.Error("render failure caught",
		slog.String("boundary", b.name),
		slog.Bool("panic", f.Panicked()),
		slog.String("error", f.Error()))
	b.publish(f)
	if b.onError != nil {
		b.onError(f)
	}
	return b.fallback(f)
}

func (b *Boundary[T]) run(ctx context.Context) (v T, failure *Failure) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}
			failure = &Failure{Err: renderError(err), Stack: debug.Stack(), Recovered: r, At: b.now()}
		}
	}()

	v, err := b.render(ctx)
	if err != nil {
		return v, &Failure{Err: renderError(err), Stack: debug.Stack(), At: b.now()}
	}
	return v, nil
}

func renderError(cause error) *domain.GenerationError {
	return &domain.GenerationError{
		Type:    domain.ErrorTypeRender,
		Message: "render failed: " + cause.Error(),
		Err:     cause,
	}
}

// Reset clears the held failure so the next Render re-runs the subtree.
func (b *Boundary[T]) Reset() {
	b.mu.Lock()
	had := b.failure != nil
	b.failure = nil
	b.mu.Unlock()

	if had {
		b.logger.Info("boundary reset", slog.String("boundary", b.name))
	}
	if b.onReset != nil {
		b.onReset()
	}
}

// Failure returns the held failure, or nil.
func (b *Boundary[T]) Failure() *Failure {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failure
}

func (b *Boundary[T]) Failed() bool {
	return b.Failure() != nil
}

func (b *Boundary[T]) publish(f *Failure) {
	if b.publisher == nil {
		return
	}
	err := b.publisher.Publish(context.Background(), &domain.LifecycleEvent{
		Kind:    domain.LifecycleEventBoundary,
		Subject: b.name,
		From:    "rendering",
		To:      "failed",
		Detail:  f.Error(),
	})
	if err != nil {
		b.logger.Warn("failed to publish boundary event",
			slog.String("boundary", b.name),
			slog.String("error", err.Error()))
	}
}
