// internal/inventory/inventory.go
package inventory

// Inventory tracks per-resource availability. One unit is taken or returned per
// occurrence of a name, so duplicates count twice.
//
// Names with no matching resource are skipped rather than failing the whole
// operation: an event can outlive a resource that was removed from the stock
// file, and its deletion must still succeed. Both Allocate and Release return
// the skipped names so callers can warn about the drift.
type Inventory struct {
	resources []Resource
	index     map[string]int
}

// New builds an inventory in load order. A repeated name keeps its first entry.
func New(resources []Resource) (*Inventory, []string) {
	inv := &Inventory{
		resources: make([]Resource, 0, len(resources)),
		index:     make(map[string]int, len(resources)),
	}

	var dropped []string
	for _, r := range resources {
		if _, ok := inv.index[r.Name]; ok || r.Name == "" {
			dropped = append(dropped, r.Name)
			continue
		}
		inv.index[r.Name] = len(inv.resources)
		inv.resources = append(inv.resources, r)
	}
	return inv, dropped
}

// Allocate takes one unit of each named resource.
func (inv *Inventory) Allocate(names []string) (missing []string) {
	return inv.apply(names, -1)
}

// Release returns one unit of each named resource.
func (inv *Inventory) Release(names []string) (missing []string) {
	return inv.apply(names, 1)
}

func (inv *Inventory) apply(names []string, delta int) []string {
	var missing []string
	for _, name := range names {
		i, ok := inv.index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		inv.resources[i].Quantity += delta
	}
	return missing
}

// Shortfall lists the resources that would go below zero if names were allocated.
func (inv *Inventory) Shortfall(names []string) []string {
	need := make(map[string]int, len(names))
	flagged := make(map[string]bool)
	var short []string
	for _, name := range names {
		i, ok := inv.index[name]
		if !ok {
			continue
		}
		need[name]++
		if need[name] > inv.resources[i].Quantity && !flagged[name] {
			flagged[name] = true
			short = append(short, name)
		}
	}
	return short
}

// Has reports whether name is a known resource.
func (inv *Inventory) Has(name string) bool {
	_, ok := inv.index[name]
	return ok
}

// Quantity returns the available units of name.
func (inv *Inventory) Quantity(name string) (int, bool) {
	i, ok := inv.index[name]
	if !ok {
		return 0, false
	}
	return inv.resources[i].Quantity, true
}

// Snapshot returns a copy of the current stock in load order.
func (inv *Inventory) Snapshot() []Resource {
	return append([]Resource{}, inv.resources...)
}
