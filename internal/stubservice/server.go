// Package stubservice is a local stand-in for the generation service. It
// serves both generation endpoints with a deterministic placeholder image and
// can be told to fail so clients can exercise their error paths.
package stubservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/ghibli-studio/internal/backend/artapi"
)

// FailHeader forces a failure response. Its value is the status code to
// return; FailBodyHeader optionally sets the plain-text body.
const (
	FailHeader     = "X-Stub-Fail"
	FailBodyHeader = "X-Stub-Fail-Body"
)

const (
	defaultTimeout = 30 * time.Second
	maxUploadBytes = 10 << 20
)

// Options configures the stub.
type Options struct {
	Port       int
	Timeout    time.Duration
	FailStatus int // non-zero fails every generation request
	FailBody   string
	ImageSize  int
}

type Server struct {
	Router *chi.Mux
	Port   int
	opts   Options
	logger *slog.Logger
	srv    *http.Server
}

// New builds the router with request id, logging, timeout, panic recovery
// and tracing middleware.
func New(opts Options, logger *slog.Logger) *Server {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ImageSize <= 0 {
		opts.ImageSize = defaultImageSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(opts.Timeout))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "ghibli-artstub")
	})

	s := &Server{
		Router: r,
		Port:   opts.Port,
		opts:   opts,
		logger: logger,
	}

	r.Post(artapi.PathGenerate, s.handleGenerate)
	r.Post(artapi.PathGenerateFromText, s.handleGenerateFromText)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting stub service", slog.Int("port", s.Port))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
