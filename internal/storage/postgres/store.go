// internal/storage/postgres/store.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"spacevents/internal/catalog"
	"spacevents/internal/inventory"
	"spacevents/internal/ledger"
	"spacevents/internal/storage"
)

// undefined_table: the schema has not been created yet.
const codeUndefinedTable = "42P01"

const schema = `
CREATE TABLE IF NOT EXISTS event_types (
	position  INT PRIMARY KEY,
	name      TEXT NOT NULL UNIQUE,
	resources TEXT[] NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS resources (
	position INT PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE,
	quantity INT NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	position   INT PRIMARY KEY,
	event_type TEXT NOT NULL,
	event_date TEXT NOT NULL,
	resources  TEXT[] NOT NULL DEFAULT '{}'
);
`

// Store keeps planner state in PostgreSQL. Events and resources are written
// in one transaction, so the stored stock always matches the stored events.
type Store struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:     db,
		tracer: otel.Tracer("spacevents/storage/postgres"),
	}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "postgres.migrate")
	defer span.End()

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return failed(span, fmt.Errorf("apply schema: %w", err))
	}
	return nil
}

// LoadEventTypes returns the catalog in stored order.
func (s *Store) LoadEventTypes(ctx context.Context) ([]catalog.EventType, error) {
	ctx, span := s.tracer.Start(ctx, "postgres.load_event_types")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `SELECT name, resources FROM event_types ORDER BY position ASC`)
	if err != nil {
		return nil, classify("query event types", err)
	}
	defer rows.Close()

	var types []catalog.EventType
	for rows.Next() {
		var t catalog.EventType
		if err := rows.Scan(&t.Name, pq.Array(&t.Resources)); err != nil {
			return nil, fmt.Errorf("scan event type: %w", err)
		}
		if t.Resources == nil {
			t.Resources = []string{}
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event types: %w", err)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("event types: %w", storage.ErrNotFound)
	}

	span.SetAttributes(attribute.Int("event_types.loaded", len(types)))
	return types, nil
}

// LoadResources returns the inventory in stored order.
func (s *Store) LoadResources(ctx context.Context) ([]inventory.Resource, error) {
	ctx, span := s.tracer.Start(ctx, "postgres.load_resources")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `SELECT name, quantity FROM resources ORDER BY position ASC`)
	if err != nil {
		return nil, classify("query resources", err)
	}
	defer rows.Close()

	var resources []inventory.Resource
	for rows.Next() {
		var r inventory.Resource
		if err := rows.Scan(&r.Name, &r.Quantity); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	if len(resources) == 0 {
		return nil, fmt.Errorf("resources: %w", storage.ErrNotFound)
	}

	span.SetAttributes(attribute.Int("resources.loaded", len(resources)))
	return resources, nil
}

// LoadEvents returns the ledger in stored order.
func (s *Store) LoadEvents(ctx context.Context) ([]ledger.Event, error) {
	ctx, span := s.tracer.Start(ctx, "postgres.load_events")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `SELECT event_type, event_date, resources FROM events ORDER BY position ASC`)
	if err != nil {
		return nil, classify("query events", err)
	}
	defer rows.Close()

	events := []ledger.Event{}
	for rows.Next() {
		var e ledger.Event
		if err := rows.Scan(&e.Type, &e.Date, pq.Array(&e.Resources)); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if e.Resources == nil {
			e.Resources = []string{}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}

// Save replaces the stored events and resources atomically.
func (s *Store) Save(ctx context.Context, events []ledger.Event, resources []inventory.Resource) error {
	ctx, span := s.tracer.Start(ctx, "postgres.save",
		trace.WithAttributes(
			attribute.Int("events.count", len(events)),
			attribute.Int("resources.count", len(resources)),
		),
	)
	defer span.End()

	return failed(span, s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
			return fmt.Errorf("clear events: %w", err)
		}
		for i, e := range events {
			names := e.Resources
			if names == nil {
				names = []string{}
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO events (position, event_type, event_date, resources)
				VALUES ($1, $2, $3, $4)
			`, i, e.Type, e.Date, pq.Array(names))
			if err != nil {
				return fmt.Errorf("insert event %d: %w", i, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM resources`); err != nil {
			return fmt.Errorf("clear resources: %w", err)
		}
		for i, r := range resources {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO resources (position, name, quantity)
				VALUES ($1, $2, $3)
			`, i, r.Name, r.Quantity)
			if err != nil {
				return fmt.Errorf("insert resource %s: %w", r.Name, err)
			}
		}
		return nil
	}))
}

// SaveEventTypes replaces the stored catalog. Used to seed a database.
func (s *Store) SaveEventTypes(ctx context.Context, types []catalog.EventType) error {
	ctx, span := s.tracer.Start(ctx, "postgres.save_event_types",
		trace.WithAttributes(attribute.Int("event_types.count", len(types))),
	)
	defer span.End()

	return failed(span, s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_types`); err != nil {
			return fmt.Errorf("clear event types: %w", err)
		}
		for i, t := range types {
			names := t.Resources
			if names == nil {
				names = []string{}
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO event_types (position, name, resources)
				VALUES ($1, $2, $3)
			`, i, t.Name, pq.Array(names))
			if err != nil {
				return fmt.Errorf("insert event type %s: %w", t.Name, err)
			}
		}
		return nil
	}))
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// failed records a non-nil err on span and returns it unchanged.
func failed(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUndefinedTable {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
