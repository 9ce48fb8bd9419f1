// internal/catalog/catalog.go
package catalog

// Catalog is the read-only mapping of event types to their default resources.
type Catalog struct {
	types []EventType
	index map[string]int
}

// New builds a catalog from types in load order. A repeated name keeps its first
// definition; the dropped names are returned so the caller can report them.
func New(types []EventType) (*Catalog, []string) {
	c := &Catalog{
		types: make([]EventType, 0, len(types)),
		index: make(map[string]int, len(types)),
	}

	var dropped []string
	for _, t := range types {
		if _, ok := c.index[t.Name]; ok || t.Name == "" {
			dropped = append(dropped, t.Name)
			continue
		}
		c.index[t.Name] = len(c.types)
		c.types = append(c.types, EventType{
			Name:      t.Name,
			Resources: append([]string(nil), t.Resources...),
		})
	}
	return c, dropped
}

// Names returns the event-type names in load order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.types))
	for i, t := range c.types {
		names[i] = t.Name
	}
	return names
}

// Has reports whether name is a known event type.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// DefaultResourcesFor returns the default resources of an event type.
// Unknown names have no defaults; the result is never nil.
func (c *Catalog) DefaultResourcesFor(name string) []string {
	i, ok := c.index[name]
	if !ok {
		return []string{}
	}
	return append([]string{}, c.types[i].Resources...)
}

// Types returns a copy of every event type.
func (c *Catalog) Types() []EventType {
	out := make([]EventType, len(c.types))
	for i, t := range c.types {
		out[i] = EventType{Name: t.Name, Resources: append([]string{}, t.Resources...)}
	}
	return out
}
