package studio

import (
	"fmt"
	"log/slog"

	"github.com/tjfontaine/ghibli-studio/internal/adapters/storage/sqlite"
	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
	"github.com/tjfontaine/ghibli-studio/internal/orchestrator"
	"github.com/tjfontaine/ghibli-studio/internal/pkg/config"
	"github.com/tjfontaine/ghibli-studio/internal/storage/memory"
)

// Option is a functional option for configuring a Studio.
type Option func(*Studio) error

// WithConfig uses an already loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Studio) error {
		if cfg == nil {
			return fmt.Errorf("nil config")
		}
		s.cfg = cfg
		return nil
	}
}

// WithFileConfig loads configuration from path and the environment.
func WithFileConfig(path string) Option {
	return func(s *Studio) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		s.cfg = cfg
		return nil
	}
}

// WithMemoryJournal keeps lifecycle events in process memory.
func WithMemoryJournal() Option {
	return func(s *Studio) error {
		s.journal = memory.New()
		return nil
	}
}

// WithSQLiteJournal records lifecycle events in SQLite.
func WithSQLiteJournal(dsn string) Option {
	return func(s *Studio) error {
		store, err := sqlite.NewProvider(dsn)
		if err != nil {
			return fmt.Errorf("create sqlite journal: %w", err)
		}
		s.journal = store
		return nil
	}
}

// WithEventStore uses a custom journal.
func WithEventStore(store ports.EventStore) Option {
	return func(s *Studio) error {
		s.journal = store
		return nil
	}
}

// WithEventPublisher overrides the default direct-to-journal publisher.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Studio) error {
		s.publisher = publisher
		return nil
	}
}

// WithGenerator replaces the HTTP client built from configuration.
func WithGenerator(g orchestrator.Generator) Option {
	return func(s *Studio) error {
		s.generator = g
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) error {
		s.logger = logger
		return nil
	}
}
