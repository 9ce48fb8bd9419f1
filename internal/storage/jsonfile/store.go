// internal/storage/jsonfile/store.go
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"spacevents/internal/catalog"
	"spacevents/internal/inventory"
	"spacevents/internal/ledger"
	"spacevents/internal/storage"
)

// File names inside the data directory.
const (
	CatalogFile   = "eventos_predeterminados.json"
	InventoryFile = "recursos.json"
	LedgerFile    = "eventos_planificados.json"
)

type catalogDocument struct {
	EventTypes []catalog.EventType `json:"tipos_evento"`
}

type inventoryDocument struct {
	Resources []inventory.Resource `json:"recursos"`
}

// Store keeps the catalog, inventory and ledger as three JSON files.
type Store struct {
	dir    string
	tracer trace.Tracer
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		tracer: otel.Tracer("spacevents/storage/jsonfile"),
	}
}

// LoadEventTypes reads the event-type catalog.
func (s *Store) LoadEventTypes(ctx context.Context) ([]catalog.EventType, error) {
	var doc catalogDocument
	if err := s.read(ctx, CatalogFile, &doc); err != nil {
		return nil, err
	}
	if doc.EventTypes == nil {
		return nil, fmt.Errorf("%s: %w: missing \"tipos_evento\"", CatalogFile, storage.ErrMalformed)
	}
	return doc.EventTypes, nil
}

// LoadResources reads the resource inventory.
func (s *Store) LoadResources(ctx context.Context) ([]inventory.Resource, error) {
	var doc inventoryDocument
	if err := s.read(ctx, InventoryFile, &doc); err != nil {
		return nil, err
	}
	if doc.Resources == nil {
		return nil, fmt.Errorf("%s: %w: missing \"recursos\"", InventoryFile, storage.ErrMalformed)
	}
	return doc.Resources, nil
}

// LoadEvents reads the event ledger.
func (s *Store) LoadEvents(ctx context.Context) ([]ledger.Event, error) {
	var events []ledger.Event
	if err := s.read(ctx, LedgerFile, &events); err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].Resources == nil {
			events[i].Resources = []string{}
		}
	}
	return events, nil
}

// Save rewrites the ledger and the inventory. The two files are written one
// after the other; a failure on the first does not stop the second.
func (s *Store) Save(ctx context.Context, events []ledger.Event, resources []inventory.Resource) error {
	ctx, span := s.tracer.Start(ctx, "jsonfile.save",
		trace.WithAttributes(
			attribute.Int("events.count", len(events)),
			attribute.Int("resources.count", len(resources)),
		),
	)
	defer span.End()

	if events == nil {
		events = []ledger.Event{}
	}
	if resources == nil {
		resources = []inventory.Resource{}
	}

	errEvents := s.write(ctx, LedgerFile, events, "    ")
	errResources := s.write(ctx, InventoryFile, inventoryDocument{Resources: resources}, " ")

	if err := errors.Join(errEvents, errResources); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return err
	}
	return nil
}

// SaveEventTypes writes the catalog file in the canonical schema.
func (s *Store) SaveEventTypes(ctx context.Context, types []catalog.EventType) error {
	return s.write(ctx, CatalogFile, catalogDocument{EventTypes: types}, "    ")
}

func (s *Store) read(ctx context.Context, name string, v any) error {
	_, span := s.tracer.Start(ctx, "jsonfile.read",
		trace.WithAttributes(attribute.String("file.name", name)),
	)
	defer span.End()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		span.SetAttributes(attribute.Bool("file.missing", true))
		return fmt.Errorf("%s: %w", name, storage.ErrNotFound)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return fmt.Errorf("%s: %w: %v", name, storage.ErrMalformed, err)
	}
	return nil
}

// write replaces the file atomically: encode to a uniquely named temp file in
// the same directory, then rename over the target.
func (s *Store) write(ctx context.Context, name string, v any, indent string) error {
	_, span := s.tracer.Start(ctx, "jsonfile.write",
		trace.WithAttributes(attribute.String("file.name", name)),
	)
	defer span.End()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		span.RecordError(err)
		return fmt.Errorf("encode %s: %w", name, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		span.RecordError(err)
		return fmt.Errorf("create data dir: %w", err)
	}

	target := filepath.Join(s.dir, name)
	tmp := filepath.Join(s.dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.NewString()))
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		span.RecordError(err)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		span.RecordError(err)
		return fmt.Errorf("replace %s: %w", name, err)
	}

	span.SetAttributes(attribute.Int("file.bytes", buf.Len()))
	return nil
}
