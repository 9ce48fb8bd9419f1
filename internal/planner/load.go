// internal/planner/load.go
package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"spacevents/internal/catalog"
	"spacevents/internal/inventory"
	"spacevents/internal/ledger"
	"spacevents/internal/storage"
)

// Load reads the catalog, inventory and ledger from store. It never fails:
// missing data falls back to the built-in defaults (an empty ledger), and
// unreadable data is logged and replaced the same way.
func Load(ctx context.Context, store Store, logger *log.Logger) *State {
	if logger == nil {
		logger = log.Default()
	}

	types, err := store.LoadEventTypes(ctx)
	if err != nil {
		logLoadFallback(logger, "event types", "built-in defaults", err)
		types = catalog.Defaults()
	}
	cat, dropped := catalog.New(types)
	if len(dropped) > 0 {
		logger.Printf("WARN: ignoring duplicate or unnamed event types: %q", dropped)
	}

	resources, err := store.LoadResources(ctx)
	if err != nil {
		logLoadFallback(logger, "resources", "built-in defaults", err)
		resources = inventory.Defaults()
	}
	inv, dropped := inventory.New(resources)
	if len(dropped) > 0 {
		logger.Printf("WARN: ignoring duplicate or unnamed resources: %q", dropped)
	}
	if negative := negativeStock(inv); len(negative) > 0 {
		logger.Printf("WARN: resources with negative stock cannot be allocated until released: %s", joinNames(negative))
	}

	events, err := store.LoadEvents(ctx)
	if err != nil {
		logLoadFallback(logger, "events", "an empty ledger", err)
		events = nil
	}

	logger.Printf("state loaded event_types=%d resources=%d events=%d", len(cat.Names()), len(inv.Snapshot()), len(events))
	for _, name := range unknownReferences(cat, inv) {
		logger.Printf("WARN: event type default %q is not in the inventory", name)
	}

	return &State{
		Catalog:   cat,
		Inventory: inv,
		Ledger:    ledger.New(events),
	}
}

func logLoadFallback(logger *log.Logger, what, fallback string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		logger.Printf("no stored %s, starting with %s", what, fallback)
		return
	}
	logger.Printf("ERROR: load %s: %v; starting with %s", what, err, fallback)
}

// unknownReferences lists catalog defaults with no inventory entry. Such
// names are recorded on events but never change any stock.
func unknownReferences(cat *catalog.Catalog, inv *inventory.Inventory) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range cat.Types() {
		for _, name := range t.Resources {
			if !inv.Has(name) && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func negativeStock(inv *inventory.Inventory) []string {
	var out []string
	for _, r := range inv.Snapshot() {
		if r.Quantity < 0 {
			out = append(out, fmt.Sprintf("%s=%d", r.Name, r.Quantity))
		}
	}
	return out
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
