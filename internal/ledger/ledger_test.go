package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func sampleEvents(n int) []Event {
	types := []string{"Despegue", "Prueba", "Ensayo"}
	out := make([]Event, n)
	for i := range out {
		out[i] = Event{
			Type:      types[i%len(types)],
			Date:      Date{Day: i + 1, Month: 1, Year: 2030}.String(),
			Resources: []string{"COHETE"},
		}
	}
	return out
}

func TestLedger_AppendAndCount(t *testing.T) {
	l := New(nil)
	assert.Equal(t, 0, l.Count())

	l.Append(Event{Type: "Despegue", Date: "01/02/2030", Resources: []string{"COHETE"}})
	assert.Equal(t, 1, l.Count())

	e, err := l.At(0)
	require.NoError(t, err)
	assert.Equal(t, "Despegue", e.Type)
}

func TestLedger_AllIsACopy(t *testing.T) {
	l := New(sampleEvents(2))

	all := l.All()
	all[0].Resources[0] = "CHANGED"
	all[1].Type = "CHANGED"

	again := l.All()
	assert.Equal(t, "COHETE", again[0].Resources[0])
	assert.Equal(t, "Prueba", again[1].Type)
}

func TestLedger_Remove(t *testing.T) {
	l := New(sampleEvents(3))

	removed, err := l.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, "Prueba", removed.Type)
	assert.Equal(t, 2, l.Count())

	_, err = l.Remove(5)
	assert.True(t, errors.Is(err, ErrInvalidIndex))
}

func TestDeletionOrder(t *testing.T) {
	t.Run("empty selection", func(t *testing.T) {
		_, err := DeletionOrder(nil, 3)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, CodeEmptySelection, verr.Code)
		assert.ErrorIs(t, err, ErrEmptySelection)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := DeletionOrder([]int{0, 3}, 3)
		assert.ErrorIs(t, err, ErrInvalidIndex)

		_, err = DeletionOrder([]int{-1}, 3)
		assert.ErrorIs(t, err, ErrInvalidIndex)
	})

	t.Run("descending and deduplicated", func(t *testing.T) {
		order, err := DeletionOrder([]int{1, 3, 1, 0}, 5)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 0}, order)
	})
}

func TestLedger_BulkRemovalKeepsRelativeOrder(t *testing.T) {
	events := sampleEvents(5)
	l := New(events)

	order, err := DeletionOrder([]int{1, 3}, l.Count())
	require.NoError(t, err)
	for _, i := range order {
		_, err := l.Remove(i)
		require.NoError(t, err)
	}

	assert.Equal(t, []Event{events[0], events[2], events[4]}, l.All())
}

func TestLedger_BulkRemovalProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		events := sampleEvents(n)
		l := New(events)

		picked := rapid.SliceOfNDistinct(rapid.IntRange(0, n-1), 1, n, rapid.ID[int]).Draw(t, "picked")
		order, err := DeletionOrder(picked, n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, i := range order {
			if _, err := l.Remove(i); err != nil {
				t.Fatalf("remove %d: %v", i, err)
			}
		}

		drop := make(map[int]bool, len(picked))
		for _, i := range picked {
			drop[i] = true
		}
		var want []Event
		for i, e := range events {
			if !drop[i] {
				want = append(want, e)
			}
		}

		if l.Count() != n-len(picked) {
			t.Fatalf("expected %d events, got %d", n-len(picked), l.Count())
		}
		if got := l.All(); len(want) > 0 && !assert.ObjectsAreEqual(want, got) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})
}
