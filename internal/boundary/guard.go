package boundary

import (
	"context"

	"github.com/tjfontaine/ghibli-studio/internal/surface"
)

// Guard wraps a guardian-protected surface in a boundary. The static value
// is served when the guardian gives up on the surface and when live fails.
func Guard[T any](g *surface.Guardian, live RenderFunc[T], static T, opts ...Option) *Boundary[T] {
	var render RenderFunc[T] = func(ctx context.Context) (T, error) {
		if g.ShowFallback() {
			return static, nil
		}
		return live(ctx)
	}
	var fallback FallbackFunc[T] = func(*Failure) T {
		return static
	}
	return New(render, fallback, opts...)
}
