// internal/planner/sync.go
package planner

import (
	"context"
	"sync"

	"spacevents/internal/inventory"
	"spacevents/internal/ledger"
)

// Synchronized serialises every call into svc behind one mutex, so
// allocate+append+save and release+remove+save each run as a unit when the
// service is shared by concurrent request handlers.
func Synchronized(svc Service) Service {
	return &synchronized{next: svc}
}

type synchronized struct {
	mu   sync.Mutex
	next Service
}

func (s *synchronized) Create(ctx context.Context, in CreateInput) (ledger.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.Create(ctx, in)
}

func (s *synchronized) DeleteMany(ctx context.Context, indices []int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.DeleteMany(ctx, indices)
}

func (s *synchronized) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.Count()
}

func (s *synchronized) ListAll() []ledger.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.ListAll()
}

func (s *synchronized) EventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.EventTypes()
}

func (s *synchronized) DefaultResources(eventType string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.DefaultResources(eventType)
}

func (s *synchronized) RecommendedResources(eventType string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.RecommendedResources(eventType)
}

func (s *synchronized) Resources() []inventory.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.Resources()
}

func (s *synchronized) Mode() Mode {
	return s.next.Mode()
}
