// Package studio assembles the generation client core for one submission
// surface: input controller, request orchestrator, preview resources and the
// lifecycle journal.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/ghibli-studio/internal/adapters/events/direct"
	"github.com/tjfontaine/ghibli-studio/internal/backend/artapi"
	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
	"github.com/tjfontaine/ghibli-studio/internal/domain"
	"github.com/tjfontaine/ghibli-studio/internal/input"
	"github.com/tjfontaine/ghibli-studio/internal/orchestrator"
	"github.com/tjfontaine/ghibli-studio/internal/pkg/config"
	"github.com/tjfontaine/ghibli-studio/internal/pkg/safehttp"
	"github.com/tjfontaine/ghibli-studio/internal/preview"
	"github.com/tjfontaine/ghibli-studio/internal/storage/memory"
	"github.com/tjfontaine/ghibli-studio/internal/surface"
)

// Studio is one submission surface.
type Studio struct {
	cfg       *config.Config
	logger    *slog.Logger
	journal   ports.EventStore
	publisher ports.EventPublisher
	generator orchestrator.Generator

	previews *preview.Manager
	input    *input.Controller
	requests *orchestrator.Orchestrator
}

// New wires a Studio. A config is required; the journal defaults to the
// configured driver and the generator to an HTTP client for service.base_url.
func New(opts ...Option) (*Studio, error) {
	s := &Studio{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if s.cfg == nil {
		return nil, errors.New("config required (use WithConfig or WithFileConfig)")
	}

	if s.journal == nil {
		switch s.cfg.Journal.Driver {
		case "sqlite":
			if err := WithSQLiteJournal(s.cfg.Journal.DSN)(s); err != nil {
				return nil, err
			}
		default:
			s.journal = memory.New()
		}
	}
	if s.publisher == nil {
		publisher, err := direct.NewPublisher(s.journal)
		if err != nil {
			return nil, fmt.Errorf("create event publisher: %w", err)
		}
		s.publisher = publisher
	}
	if s.generator == nil {
		s.generator = newClient(s.cfg.Service)
	}

	s.previews = preview.NewManager(nil,
		preview.WithLogger(s.logger),
		preview.WithPublisher(s.publisher))
	s.input = input.NewController(s.previews)

	requests, err := orchestrator.New(s.generator, s.previews,
		orchestrator.WithLogger(s.logger),
		orchestrator.WithPublisher(s.publisher),
		orchestrator.OnReset(s.input.DropImage))
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	s.requests = requests

	return s, nil
}

func newClient(cfg config.ServiceConfig) *artapi.Client {
	var base http.RoundTripper = http.DefaultTransport
	if cfg.RestrictPrivateNetworks {
		base = safehttp.NewTransport()
	}
	return artapi.NewClient(
		artapi.WithBaseURL(cfg.BaseURL),
		artapi.WithUserAgent(cfg.UserAgent),
		artapi.WithHTTPClient(&http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(base),
		}),
	)
}

func (s *Studio) Input() *input.Controller { return s.input }
func (s *Studio) Requests() *orchestrator.Orchestrator { return s.requests }
func (s *Studio) Previews() *preview.Manager { return s.previews }
func (s *Studio) Journal() ports.EventStore { return s.journal }
func (s *Studio) Config() *config.Config { return s.cfg }

// SelectImage replaces the chosen photo. A settled result or error from the
// previous request is cleared first.
func (s *Studio) SelectImage(name string, data []byte) (*domain.ResourceHandle, error) {
	if st := s.requests.State(); st.Phase == domain.PhaseSuccess || st.Phase == domain.PhaseError {
		s.requests.Reset()
	}
	return s.input.SelectImage(name, data)
}

// Generate submits the controller's current input.
func (s *Studio) Generate(ctx context.Context) (*domain.ResourceHandle, error) {
	return s.requests.Submit(ctx, s.input.Request())
}

// CreateAnother discards the result and the input so a new artwork can be
// started. Mode and style are kept.
func (s *Studio) CreateAnother() {
	s.requests.Reset()
	s.input.Clear()
}

// Download writes the current result into dir and returns its path.
func (s *Studio) Download(dir string) (string, error) {
	return s.previews.Export(domain.SlotResult, dir)
}

// NewGuardian guards a rendering surface with the configured recovery timings.
func (s *Studio) NewGuardian(name string, target surface.Surface) (*surface.Guardian, error) {
	return surface.NewGuardian(target,
		surface.WithName(name),
		surface.WithRestoreDelay(s.cfg.Surface.RestoreDelay),
		surface.WithFailureTimeout(s.cfg.Surface.FailureTimeout),
		surface.WithLogger(s.logger),
		surface.WithPublisher(s.publisher))
}

// Events lists journaled lifecycle events for subject, oldest first.
func (s *Studio) Events(ctx context.Context, subject string, limit int) ([]*domain.LifecycleEvent, error) {
	return s.journal.ListEvents(ctx, subject, limit)
}

// Close releases every resource and closes the journal.
func (s *Studio) Close() error {
	var errs []error
	if err := s.requests.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.previews.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.journal.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
