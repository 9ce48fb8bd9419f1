package planner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacevents/internal/ledger"
	"spacevents/internal/storage/chaos"
	"spacevents/internal/storage/jsonfile"
)

func TestPlanner_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := jsonfile.NewStore(dir)
	svc := NewService(Load(ctx, store, discard), store, WithLogger(discard))

	_, err := svc.Create(ctx, launch("COHETE", "PLATAFORMA"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Type: "Prueba", Day: "1", Month: "12", Year: "2099", Resources: []string{"EQUIPO"}})
	require.NoError(t, err)
	_, err = svc.DeleteMany(ctx, []int{0})
	require.NoError(t, err)

	restarted := NewService(Load(ctx, jsonfile.NewStore(dir), discard), store, WithLogger(discard))

	assert.Equal(t, []ledger.Event{
		{Type: "Prueba", Date: "01/12/2099", Resources: []string{"EQUIPO"}},
	}, restarted.ListAll())
	assert.Equal(t, 5, quantity(t, restarted, "COHETE"))
	assert.Equal(t, 3, quantity(t, restarted, "PLATAFORMA"))
	assert.Equal(t, 9, quantity(t, restarted, "EQUIPO"))
}

func TestPlanner_InjectedSaveFailure(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	faulty := chaos.Wrap(jsonfile.NewStore(dir), chaos.Experiment{FailureRate: 1})
	svc := NewService(Load(ctx, faulty, discard), faulty, WithLogger(discard))

	event, err := svc.Create(ctx, launch("COHETE"))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, chaos.ErrInjected)
	assert.Equal(t, "Despegue", event.Type)
	assert.Equal(t, 1, svc.Count(), "in-memory change stands")
	assert.Equal(t, 4, quantity(t, svc, "COHETE"))

	_, statErr := os.Stat(filepath.Join(dir, jsonfile.LedgerFile))
	assert.True(t, os.IsNotExist(statErr), "nothing reached disk")
	assert.Equal(t, chaos.Result{Saves: 1, Injected: 1}, faulty.Result())
}
