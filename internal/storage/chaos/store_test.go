package chaos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"spacevents/internal/catalog"
	"spacevents/internal/inventory"
	"spacevents/internal/ledger"
	"spacevents/internal/storage/jsonfile"
)

type countingBackend struct {
	saves int
}

func (b *countingBackend) LoadEventTypes(ctx context.Context) ([]catalog.EventType, error) {
	return catalog.Defaults(), nil
}

func (b *countingBackend) LoadResources(ctx context.Context) ([]inventory.Resource, error) {
	return inventory.Defaults(), nil
}

func (b *countingBackend) LoadEvents(ctx context.Context) ([]ledger.Event, error) {
	return []ledger.Event{}, nil
}

func (b *countingBackend) Save(ctx context.Context, events []ledger.Event, resources []inventory.Resource) error {
	b.saves++
	return nil
}

func TestStore_AlwaysFails(t *testing.T) {
	backend := &countingBackend{}
	s := Wrap(backend, Experiment{FailureRate: 1})

	err := s.Save(context.Background(), nil, nil)

	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 0, backend.saves)
	assert.Equal(t, Result{Saves: 1, Injected: 1}, s.Result())
}

func TestStore_PassesThroughWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	files := jsonfile.NewStore(dir)
	s := Wrap(files, Experiment{})
	ctx := context.Background()

	events := []ledger.Event{{Type: "Prueba", Date: "01/02/2030", Resources: []string{"EQUIPO"}}}
	require.NoError(t, s.Save(ctx, events, inventory.Defaults()))

	got, err := s.LoadEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, events, got)
	assert.Equal(t, Result{Saves: 1}, s.Result())
}

func TestStore_InjectsLatency(t *testing.T) {
	s := Wrap(&countingBackend{}, Experiment{Latency: 20 * time.Millisecond})

	start := time.Now()
	require.NoError(t, s.Save(context.Background(), nil, nil))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestStore_LatencyHonoursCancellation(t *testing.T) {
	s := Wrap(&countingBackend{}, Experiment{Latency: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Save(ctx, nil, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStore_InjectedMatchesRolls(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := rapid.Float64Range(0, 1).Draw(t, "rate")
		rolls := rapid.SliceOfN(rapid.Float64Range(0, 0.999), 1, 30).Draw(t, "rolls")

		backend := &countingBackend{}
		s := Wrap(backend, Experiment{FailureRate: rate})
		i := 0
		s.roll = func() float64 { v := rolls[i]; i++; return v }

		want := 0
		for _, r := range rolls {
			if rate > 0 && r < rate {
				want++
			}
			_ = s.Save(context.Background(), nil, nil)
		}

		res := s.Result()
		if res.Saves != len(rolls) || res.Injected != want || backend.saves != len(rolls)-want {
			t.Fatalf("rate=%v result=%+v backend=%d want injected=%d", rate, res, backend.saves, want)
		}
	})
}

func TestExperiment_Validate(t *testing.T) {
	assert.NoError(t, Experiment{FailureRate: 0.5, Latency: time.Second}.Validate())
	assert.Error(t, Experiment{FailureRate: 1.5}.Validate())
	assert.Error(t, Experiment{FailureRate: -0.1}.Validate())
	assert.Error(t, Experiment{Latency: -time.Second}.Validate())

	assert.False(t, Experiment{}.Enabled())
	assert.True(t, Experiment{Latency: time.Millisecond}.Enabled())
}
