// internal/planner/service.go
package planner

import (
	"context"
	"fmt"

	"spacevents/internal/catalog"
	"spacevents/internal/inventory"
	"spacevents/internal/ledger"
)

// Mode selects where a new event's resources come from.
type Mode string

const (
	// ModeDefaults uses the catalog defaults of the event type.
	ModeDefaults Mode = "defaults"
	// ModeSelection uses the resources the user ticked; at least one is required.
	ModeSelection Mode = "selection"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDefaults, ModeSelection:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeDefaults, ModeSelection)
	}
}

// CreateInput carries the raw form values for a new event.
type CreateInput struct {
	Type      string
	Day       string
	Month     string
	Year      string
	Resources []string
}

// Service defines the interface for the event planner.
type Service interface {
	Create(ctx context.Context, in CreateInput) (ledger.Event, error)
	DeleteMany(ctx context.Context, indices []int) (int, error)
	Count() int
	ListAll() []ledger.Event
	EventTypes() []string
	DefaultResources(eventType string) []string
	RecommendedResources(eventType string) []string
	Resources() []inventory.Resource
	Mode() Mode
}

// Store persists planner state between runs.
type Store interface {
	LoadEventTypes(ctx context.Context) ([]catalog.EventType, error)
	LoadResources(ctx context.Context) ([]inventory.Resource, error)
	LoadEvents(ctx context.Context) ([]ledger.Event, error)
	Save(ctx context.Context, events []ledger.Event, resources []inventory.Resource) error
}

// State is everything the planner owns for the lifetime of a session.
type State struct {
	Catalog   *catalog.Catalog
	Inventory *inventory.Inventory
	Ledger    *ledger.Ledger
}
