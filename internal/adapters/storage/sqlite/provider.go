// Package sqlite provides a SQLite backed event journal.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tjfontaine/ghibli-studio/internal/core/ports"
	"github.com/tjfontaine/ghibli-studio/internal/domain"
)

const defaultListLimit = 100

// Provider implements ports.EventStore using SQLite.
type Provider struct {
	db *sqlx.DB
}

// Ensure Provider implements ports.EventStore at compile time.
var _ ports.EventStore = (*Provider)(nil)

type eventRow struct {
	ID        string `db:"id"`
	Kind      string `db:"kind"`
	Subject   string `db:"subject"`
	FromState string `db:"from_state"`
	ToState   string `db:"to_state"`
	Detail    string `db:"detail"`
	CreatedAt int64  `db:"created_at"`
}

// NewProvider opens the journal at dsn. Use ":memory:" for a process-local journal.
func NewProvider(dsn string) (*Provider, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute pragma: %w", err)
		}
	}

	p := &Provider{db: db}
	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return p, nil
}

func (p *Provider) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS lifecycle_events (
seq INTEGER PRIMARY KEY AUTOINCREMENT,
id TEXT NOT NULL UNIQUE,
kind TEXT NOT NULL,
subject TEXT NOT NULL,
from_state TEXT NOT NULL,
to_state TEXT NOT NULL,
detail TEXT NOT NULL DEFAULT '',
created_at INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_lifecycle_events_subject ON lifecycle_events(subject, seq)`,
	}
	for _, stmt := range statements {
		if _, err := p.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) AppendEvent(ctx context.Context, event *domain.LifecycleEvent) error {
	if event == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	_, err := p.db.NamedExecContext(ctx, `INSERT INTO lifecycle_events (
id, kind, subject, from_state, to_state, detail, created_at
) VALUES (:id, :kind, :subject, :from_state, :to_state, :detail, :created_at)`, eventRow{
		ID:        event.ID,
		Kind:      string(event.Kind),
		Subject:   event.Subject,
		FromState: event.From,
		ToState:   event.To,
		Detail:    event.Detail,
		CreatedAt: event.Timestamp.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("append event %s: %w", event.ID, err)
	}
	return nil
}

func (p *Provider) ListEvents(ctx context.Context, subject string, limit int) ([]*domain.LifecycleEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, kind, subject, from_state, to_state, detail, created_at
FROM lifecycle_events`
	args := []any{}
	if subject != "" {
		query += ` WHERE subject = ?`
		args = append(args, subject)
	}
	query += ` ORDER BY seq ASC LIMIT ?`
	args = append(args, limit)

	var rows []eventRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]*domain.LifecycleEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, &domain.LifecycleEvent{
			ID:        r.ID,
			Kind:      domain.LifecycleEventKind(r.Kind),
			Subject:   r.Subject,
			From:      r.FromState,
			To:        r.ToState,
			Detail:    r.Detail,
			Timestamp: time.Unix(0, r.CreatedAt),
		})
	}
	return events, nil
}

func (p *Provider) Close() error {
	return p.db.Close()
}
