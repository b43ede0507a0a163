package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countIncidents(t *testing.T, a *app) int64 {
	t.Helper()
	stats, err := a.store.GetStats(context.Background())
	require.NoError(t, err)
	return stats.TotalIncidents
}

func TestPrune_RequiresCriterion(t *testing.T) {
	a := seededApp(t)
	err := (&PruneCommand{globals: &GlobalFlags{}}).run(context.Background(), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prune needs")
}

func TestPrune_InvertedWindow(t *testing.T) {
	a := seededApp(t)
	err := (&PruneCommand{MinYear: 2023, MaxYear: 2021, globals: &GlobalFlags{}}).run(context.Background(), a)
	assert.Error(t, err)
}

func TestPrune_DryRunDeletesNothing(t *testing.T) {
	a := seededApp(t)
	cmd := &PruneCommand{MaxYear: 2021, DryRun: true, globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a))
	})

	assert.Contains(t, output, "Would prune 1 incidents.")
	assert.Equal(t, int64(3), countIncidents(t, a))
}

func TestPrune_MaxYear(t *testing.T) {
	a := seededApp(t)
	cmd := &PruneCommand{MaxYear: 2021, globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a))
	})

	assert.Contains(t, output, "Pruned 1 incidents.")
	assert.Equal(t, int64(2), countIncidents(t, a))
}

func TestPrune_MissingCoordsJSON(t *testing.T) {
	a := seededApp(t)
	cmd := &PruneCommand{MissingCoords: true, globals: &GlobalFlags{JSON: true}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a))
	})

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, float64(1), out["pruned"])
	assert.Equal(t, false, out["dry_run"])
	assert.Equal(t, int64(2), countIncidents(t, a))

	_, err := a.store.GetIncident(context.Background(), "JA102")
	assert.Error(t, err)
}
