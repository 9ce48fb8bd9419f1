// internal/planner/implementation.go
package planner

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"spacevents/internal/catalog"
	"spacevents/internal/inventory"
	"spacevents/internal/ledger"
)

// service implements the Service interface. It is not safe for concurrent
// use; wrap it with Synchronized when more than one goroutine calls it.
type service struct {
	state  *State
	store  Store
	mode   Mode
	logger *log.Logger
	tracer trace.Tracer

	created         metric.Int64Counter
	deleted         metric.Int64Counter
	persistFailures metric.Int64Counter
}

// Option configures the planner service.
type Option func(*service)

// WithMode overrides the default selection mode.
func WithMode(m Mode) Option {
	return func(s *service) {
		if m != "" {
			s.mode = m
		}
	}
}

// WithLogger sets the logger used for warnings and persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a planner over a loaded state.
func NewService(state *State, store Store, opts ...Option) Service {
	s := &service{
		state:  state,
		store:  store,
		mode:   ModeSelection,
		logger: log.Default(),
		tracer: otel.Tracer("spacevents/planner"),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter("spacevents/planner")
	s.created = counter(meter, s.logger, "planner.events.created", "Events created")
	s.deleted = counter(meter, s.logger, "planner.events.deleted", "Events deleted")
	s.persistFailures = counter(meter, s.logger, "planner.persist.failures", "Saves that failed after a committed change")
	return s
}

func counter(meter metric.Meter, logger *log.Logger, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		logger.Printf("WARN: create counter %s: %v", name, err)
		return noop.Int64Counter{}
	}
	return c
}

// Create validates the form values, takes the event's resources from the
// inventory, appends the event and saves. Validation failures leave the state
// untouched. A save failure is returned as *PersistenceError alongside the
// event, which is already part of the ledger.
func (s *service) Create(ctx context.Context, in CreateInput) (ledger.Event, error) {
	ctx, span := s.tracer.Start(ctx, "planner.create",
		trace.WithAttributes(
			attribute.String("event.type", in.Type),
			attribute.String("planner.mode", string(s.mode)),
		),
	)
	defer span.End()

	eventType, err := ledger.ValidateType(in.Type, catalog.Placeholder)
	if err != nil {
		return ledger.Event{}, rejected(span, err)
	}
	in.Type = eventType

	date, err := ledger.ParseDate(in.Day, in.Month, in.Year)
	if err != nil {
		return ledger.Event{}, rejected(span, err)
	}
	resources, err := s.resourcesFor(in)
	if err != nil {
		return ledger.Event{}, rejected(span, err)
	}
	if short := s.state.Inventory.Shortfall(resources); len(short) > 0 {
		return ledger.Event{}, rejected(span, ledger.InsufficientResources(s.withStock(short)))
	}

	event := ledger.Event{
		Type:      in.Type,
		Date:      date.String(),
		Resources: resources,
	}

	if missing := s.state.Inventory.Allocate(resources); len(missing) > 0 {
		s.logger.Printf("WARN: event %q uses resources not in the inventory, stock unchanged for: %s", in.Type, joinNames(missing))
	}
	s.state.Ledger.Append(event)
	s.created.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", in.Type)))

	s.logger.Printf("event created type=%q date=%s resources=%d total=%d", event.Type, event.Date, len(event.Resources), s.state.Ledger.Count())
	span.SetAttributes(attribute.Int("ledger.count", s.state.Ledger.Count()))

	if err := s.persist(ctx, "create event"); err != nil {
		span.RecordError(err)
		return event, err
	}
	return event, nil
}

func (s *service) resourcesFor(in CreateInput) ([]string, error) {
	if s.mode == ModeDefaults {
		if !s.state.Catalog.Has(in.Type) {
			s.logger.Printf("WARN: event type %q is not in the catalog, creating it without resources", in.Type)
		}
		return s.state.Catalog.DefaultResourcesFor(in.Type), nil
	}

	if err := ledger.ValidateSelection(in.Resources); err != nil {
		return nil, err
	}
	var unknown []string
	for _, name := range in.Resources {
		if !s.state.Inventory.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, ledger.UnknownResources(unknown)
	}
	return append([]string{}, in.Resources...), nil
}

// DeleteMany removes the events at the given ledger positions, returning each
// one's resources to the inventory first. Positions are processed from the
// highest down so pending ones never shift. It returns how many events were
// removed.
func (s *service) DeleteMany(ctx context.Context, indices []int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "planner.delete_many",
		trace.WithAttributes(attribute.Int("indices.count", len(indices))),
	)
	defer span.End()

	order, err := ledger.DeletionOrder(indices, s.state.Ledger.Count())
	if err != nil {
		return 0, rejected(span, err)
	}

	for _, i := range order {
		event, err := s.state.Ledger.At(i)
		if err != nil {
			return 0, err
		}
		if missing := s.state.Inventory.Release(event.Resources); len(missing) > 0 {
			s.logger.Printf("WARN: deleted event %q referenced resources not in the inventory: %s", event.Type, joinNames(missing))
		}
		if _, err := s.state.Ledger.Remove(i); err != nil {
			return 0, err
		}
	}
	s.deleted.Add(ctx, int64(len(order)))

	s.logger.Printf("events deleted count=%d total=%d", len(order), s.state.Ledger.Count())
	span.SetAttributes(attribute.Int("ledger.count", s.state.Ledger.Count()))

	if err := s.persist(ctx, "delete events"); err != nil {
		span.RecordError(err)
		return len(order), err
	}
	return len(order), nil
}

// withStock annotates each name with its available units.
func (s *service) withStock(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		q, _ := s.state.Inventory.Quantity(name)
		out[i] = fmt.Sprintf("%s (%d available)", name, q)
	}
	return out
}

func (s *service) persist(ctx context.Context, op string) error {
	if err := s.store.Save(ctx, s.state.Ledger.All(), s.state.Inventory.Snapshot()); err != nil {
		s.persistFailures.Add(ctx, 1)
		s.logger.Printf("ERROR: save after %s: %v", op, err)
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

func rejected(span trace.Span, err error) error {
	span.SetStatus(codes.Error, "rejected")
	span.SetAttributes(attribute.String("rejection", err.Error()))
	return err
}

// Count returns the number of planned events.
func (s *service) Count() int {
	return s.state.Ledger.Count()
}

// ListAll returns the planned events in creation order.
func (s *service) ListAll() []ledger.Event {
	return s.state.Ledger.All()
}

// EventTypes returns the catalog's event-type names.
func (s *service) EventTypes() []string {
	return s.state.Catalog.Names()
}

// DefaultResources previews the catalog defaults of an event type.
func (s *service) DefaultResources(eventType string) []string {
	return s.state.Catalog.DefaultResourcesFor(eventType)
}

// RecommendedResources returns the catalog defaults of an event type that can
// actually be selected, i.e. that exist in the inventory.
func (s *service) RecommendedResources(eventType string) []string {
	out := []string{}
	for _, name := range s.state.Catalog.DefaultResourcesFor(eventType) {
		if s.state.Inventory.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// Resources returns the current stock.
func (s *service) Resources() []inventory.Resource {
	return s.state.Inventory.Snapshot()
}

func (s *service) Mode() Mode {
	return s.mode
}
