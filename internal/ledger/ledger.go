// internal/ledger/ledger.go
package ledger

import (
	"fmt"
	"sort"
)

// Ledger is the ordered list of created events. An event's position is its
// identity for deletion.
type Ledger struct {
	events []Event
}

// New wraps previously persisted events.
func New(events []Event) *Ledger {
	l := &Ledger{events: make([]Event, 0, len(events))}
	for _, e := range events {
		l.Append(e)
	}
	return l
}

// Append adds e at the end of the ledger.
func (l *Ledger) Append(e Event) {
	l.events = append(l.events, clone(e))
}

// At returns the event at position i.
func (l *Ledger) At(i int) (Event, error) {
	if i < 0 || i >= len(l.events) {
		return Event{}, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	return clone(l.events[i]), nil
}

// Remove deletes and returns the event at position i. Later events shift down.
func (l *Ledger) Remove(i int) (Event, error) {
	e, err := l.At(i)
	if err != nil {
		return Event{}, err
	}
	l.events = append(l.events[:i], l.events[i+1:]...)
	return e, nil
}

// Count returns the number of events.
func (l *Ledger) Count() int {
	return len(l.events)
}

// All returns a copy of every event in order.
func (l *Ledger) All() []Event {
	out := make([]Event, len(l.events))
	for i, e := range l.events {
		out[i] = clone(e)
	}
	return out
}

// DeletionOrder validates indices against a ledger of count events and returns
// them deduplicated, highest first, so removing them one by one never shifts a
// position that is still pending.
func DeletionOrder(indices []int, count int) ([]int, error) {
	if len(indices) == 0 {
		return nil, invalid("indices", CodeEmptySelection, ErrEmptySelection, "select at least one event")
	}

	seen := make(map[int]bool, len(indices))
	order := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= count {
			return nil, invalid("indices", CodeInvalidIndex, ErrInvalidIndex, fmt.Sprintf("%d is outside 0..%d", i, count-1))
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		order = append(order, i)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(order)))
	return order, nil
}

func clone(e Event) Event {
	e.Resources = append([]string{}, e.Resources...)
	return e
}
