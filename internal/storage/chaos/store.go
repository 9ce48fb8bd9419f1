// internal/storage/chaos/store.go
package chaos

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"spacevents/internal/catalog"
	"spacevents/internal/inventory"
	"spacevents/internal/ledger"
)

// ErrInjected is returned by saves that the experiment chose to fail.
var ErrInjected = errors.New("chaos: injected save failure")

// Backend is the store being wrapped.
type Backend interface {
	LoadEventTypes(ctx context.Context) ([]catalog.EventType, error)
	LoadResources(ctx context.Context) ([]inventory.Resource, error)
	LoadEvents(ctx context.Context) ([]ledger.Event, error)
	Save(ctx context.Context, events []ledger.Event, resources []inventory.Resource) error
}

// Experiment describes the faults injected into saves.
type Experiment struct {
	FailureRate float64       // 0.0 to 1.0
	Latency     time.Duration // added before every save
}

// Enabled reports whether the experiment injects anything.
func (e Experiment) Enabled() bool {
	return e.FailureRate > 0 || e.Latency > 0
}

// Validate checks the experiment parameters.
func (e Experiment) Validate() error {
	if e.FailureRate < 0 || e.FailureRate > 1 {
		return fmt.Errorf("failure rate %v outside 0..1", e.FailureRate)
	}
	if e.Latency < 0 {
		return fmt.Errorf("negative latency %s", e.Latency)
	}
	return nil
}

// Result tallies what the experiment did so far.
type Result struct {
	Saves    int `json:"saves"`
	Injected int `json:"injected"`
}

// Store wraps a backend and injects latency and failures into Save. Loads
// pass through untouched so startup stays deterministic.
type Store struct {
	next   Backend
	exp    Experiment
	tracer trace.Tracer
	roll   func() float64

	mu     sync.Mutex
	result Result
}

// Wrap applies exp to every save on next.
func Wrap(next Backend, exp Experiment) *Store {
	return &Store{
		next:   next,
		exp:    exp,
		tracer: otel.Tracer("spacevents/storage/chaos"),
		roll:   rand.Float64,
	}
}

func (s *Store) LoadEventTypes(ctx context.Context) ([]catalog.EventType, error) {
	return s.next.LoadEventTypes(ctx)
}

func (s *Store) LoadResources(ctx context.Context) ([]inventory.Resource, error) {
	return s.next.LoadResources(ctx)
}

func (s *Store) LoadEvents(ctx context.Context) ([]ledger.Event, error) {
	return s.next.LoadEvents(ctx)
}

// Save delays by the configured latency, then fails with ErrInjected at the
// configured rate or forwards to the backend.
func (s *Store) Save(ctx context.Context, events []ledger.Event, resources []inventory.Resource) error {
	ctx, span := s.tracer.Start(ctx, "chaos.save",
		trace.WithAttributes(
			attribute.Float64("chaos.failure_rate", s.exp.FailureRate),
			attribute.String("chaos.latency", s.exp.Latency.String()),
		),
	)
	defer span.End()

	if s.exp.Latency > 0 {
		span.AddEvent("inject-latency")
		select {
		case <-time.After(s.exp.Latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	s.result.Saves++
	fail := s.exp.FailureRate > 0 && s.roll() < s.exp.FailureRate
	if fail {
		s.result.Injected++
	}
	s.mu.Unlock()

	if fail {
		span.AddEvent("inject-failure")
		span.RecordError(ErrInjected)
		return ErrInjected
	}
	return s.next.Save(ctx, events, resources)
}

// Result returns the counters collected so far.
func (s *Store) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}
