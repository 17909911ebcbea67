// Package surface guards an interactive rendering surface against loss of its
// graphics context.
//
// A Guardian turns the two platform signals, context lost and context
// restored, into a bounded recovery sequence:
//
//	Live -> Lost -> Recovering -> Live
//	                           -> Failed (no restore within the failure timeout)
//
// Failed is terminal until the surface is remounted.
package surface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

// Surface is the rendering surface being guarded.
type Surface interface {
	// Restore asks the platform to recreate the lost context. Success is
	// reported later through Guardian.ContextRestored.
	Restore() error
}

// SurfaceFunc adapts a function to the Surface interface.
type SurfaceFunc func() error

func (f SurfaceFunc) Restore() error { return f() }

// Transition is one recorded status change.
type Transition struct {
	From domain.SurfaceStatus
	To   domain.SurfaceStatus
	At   time.Time
}

// Guardian drives the recovery state machine for one surface.
type Guardian struct {
	mu          sync.Mutex
	surface     Surface
	status      domain.SurfaceStatus
	lossAt      time.Time
	epoch       uint64
	closed      bool
	restore     Timer
	fail        Timer
	transitions []Transition

	restoreDelay   time.Duration
	failureTimeout time.Duration
	clock          Clock
	name           string
	logger         *slog.Logger
	publisher      ports.EventPublisher
}

// NewGuardian creates a guardian in the Live status.
func NewGuardian(surface Surface, opts ...Option) (*Guardian, error) {
	if surface == nil {
		return nil, errors.New("surface required")
	}
	g := &Guardian{
		surface:        surface,
		status:         domain.SurfaceLive,
		restoreDelay:   DefaultRestoreDelay,
		failureTimeout: DefaultFailureTimeout,
		clock:          RealClock(),
		name:           "surface",
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.restoreDelay < 0 {
		return nil, fmt.Errorf("restore delay must not be negative, got %s", g.restoreDelay)
	}
	if g.failureTimeout <= g.restoreDelay {
		return nil, fmt.Errorf("failure timeout %s must exceed restore delay %s", g.failureTimeout, g.restoreDelay)
	}
	return g, nil
}

// ContextLost handles the platform's context-loss signal. It returns true
// when the host must suppress the platform's default handling (a full
// reload). A loss reported while a recovery is already underway is ignored.
func (g *Guardian) ContextLost() bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	if g.status != domain.SurfaceLive {
		g.mu.Unlock()
		g.logger.Debug("ignoring context loss", slog.String("surface", g.name))
		return true
	}

	now := g.clock.Now()
	g.lossAt = now
	g.epoch++
	epoch := g.epoch
	t := g.moveLocked(domain.SurfaceLost, now)
	g.restore = g.clock.AfterFunc(g.restoreDelay, func() { g.attemptRestore(epoch) })
	g.fail = g.clock.AfterFunc(g.failureTimeout, func() { g.expire(epoch) })
	g.mu.Unlock()

	g.logger.Warn("render context lost", slog.String("surface", g.name))
	g.publish(t, "")
	return true
}

// ContextRestored handles the platform's restoration signal.
func (g *Guardian) ContextRestored() {
	g.mu.Lock()
	if g.closed || (g.status != domain.SurfaceLost && g.status != domain.SurfaceRecovering) {
		g.mu.Unlock()
		return
	}
	g.stopTimersLocked()
	g.epoch++
	t := g.moveLocked(domain.SurfaceLive, g.clock.Now())
	lossAt := g.lossAt
	g.mu.Unlock()

	g.logger.Info("render context restored",
		slog.String("surface", g.name),
		slog.Duration("downtime", t.At.Sub(lossAt)))
	g.publish(t, "")
}

func (g *Guardian) attemptRestore(epoch uint64) {
	g.mu.Lock()
	if g.closed || g.epoch != epoch || g.status != domain.SurfaceLost {
		g.mu.Unlock()
		return
	}
	t := g.moveLocked(domain.SurfaceRecovering, g.clock.Now())
	g.mu.Unlock()
	g.publish(t, "")

	if err := g.surface.Restore(); err != nil {
		g.logger.Warn("restore attempt failed",
			slog.String("surface", g.name),
			slog.String("error", err.Error()))
	}
}

func (g *Guardian) expire(epoch uint64) {
	g.mu.Lock()
	if g.closed || g.epoch != epoch || (g.status != domain.SurfaceLost && g.status != domain.SurfaceRecovering) {
		g.mu.Unlock()
		return
	}
	if g.restore != nil {
		g.restore.Stop()
	}
	t := g.moveLocked(domain.SurfaceFailed, g.clock.Now())
	g.mu.Unlock()

	g.logger.Error("render context not restored",
		slog.String("surface", g.name),
		slog.String("type", string(domain.ErrorTypeRenderContextLoss)),
		slog.Duration("timeout", g.failureTimeout))
	g.publish(t, string(domain.ErrorTypeRenderContextLoss))
}

// Status returns the current status.
func (g *Guardian) Status() domain.SurfaceStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Context returns the render context snapshot.
func (g *Guardian) Context() domain.RenderContext {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.RenderContext{Status: g.status, LossTimestamp: g.lossAt}
}

// ShowFallback reports whether the static fallback replaces the live surface.
func (g *Guardian) ShowFallback() bool {
	return g.Status() == domain.SurfaceFailed
}

// Transitions returns the status history since construction or the last Remount.
func (g *Guardian) Transitions() []Transition {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Transition(nil), g.transitions...)
}

// Remount reinitializes the guardian for a freshly mounted surface.
// Pending timers are cancelled and history starts over.
func (g *Guardian) Remount(surface Surface) {
	g.mu.Lock()
	g.stopTimersLocked()
	g.epoch++
	if surface != nil {
		g.surface = surface
	}
	from := g.status
	g.status = domain.SurfaceLive
	g.lossAt = time.Time{}
	g.closed = false
	g.transitions = nil
	t := Transition{From: from, To: domain.SurfaceLive, At: g.clock.Now()}
	g.mu.Unlock()

	g.logger.Info("surface remounted", slog.String("surface", g.name))
	g.publish(t, "remount")
}

// Close cancels pending timers. Timer callbacks that already started are inert.
func (g *Guardian) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.epoch++
	g.stopTimersLocked()
	return nil
}

func (g *Guardian) stopTimersLocked() {
	if g.restore != nil {
		g.restore.Stop()
		g.restore = nil
	}
	if g.fail != nil {
		g.fail.Stop()
		g.fail = nil
	}
}

func (g *Guardian) moveLocked(to domain.SurfaceStatus, at time.Time) Transition {
	t := Transition{From: g.status, To: to, At: at}
	g.status = to
	g.transitions = append(g.transitions, t)
	return t
}

func (g *Guardian) publish(t Transition, detail string) {
	if g.publisher == nil {
		return
	}
	err := g.publisher.Publish(context.Background(), &domain.LifecycleEvent{
		Kind:    domain.LifecycleEventSurface,
		Subject: g.name,
		From:    t.From.String(),
		To:      t.To.String(),
		Detail:  detail,
	})
	if err != nil {
		g.logger.Warn("failed to publish surface event",
			slog.String("surface", g.name),
			slog.String("error", err.Error()))
	}
}
