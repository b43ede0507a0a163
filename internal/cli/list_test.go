package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runListJSON(t *testing.T, a *app, cmd *ListCommand) listJSON {
	t.Helper()
	cmd.globals = &GlobalFlags{JSON: true}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a))
	})

	var out listJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	return out
}

func TestList_AllInStoreOrder(t *testing.T) {
	a := seededApp(t)
	out := runListJSON(t, a, &ListCommand{Limit: 20})

	assert.Equal(t, "date", out.Mode)
	assert.Equal(t, 3, out.Total)
	require.Len(t, out.Results, 3)
	assert.Equal(t, "JA100", out.Results[0].CaseNumber)
	assert.Equal(t, "JA101", out.Results[1].CaseNumber)
	assert.Equal(t, "JA102", out.Results[2].CaseNumber)
}

func TestList_YearFilter(t *testing.T) {
	a := seededApp(t)
	out := runListJSON(t, a, &ListCommand{RangeFlags: RangeFlags{Mode: "year", From: "2022"}, Limit: 20})

	assert.Equal(t, "year", out.Mode)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "JA101", out.Results[0].CaseNumber)
	assert.True(t, out.Results[0].Arrest)
}

func TestList_Pagination(t *testing.T) {
	a := seededApp(t)
	out := runListJSON(t, a, &ListCommand{Limit: 1, Offset: 1})

	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 1, out.Offset)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "JA101", out.Results[0].CaseNumber)

	out = runListJSON(t, a, &ListCommand{Limit: 5, Offset: 10})
	assert.Equal(t, 3, out.Total)
	assert.Empty(t, out.Results)
}

func TestList_JSONCoordinates(t *testing.T) {
	a := seededApp(t)
	out := runListJSON(t, a, &ListCommand{Limit: 20})

	require.NotNil(t, out.Results[0].Latitude)
	assert.InDelta(t, 41.88, *out.Results[0].Latitude, 1e-9)
	assert.Nil(t, out.Results[2].Latitude)
	assert.Nil(t, out.Results[2].Longitude)
	assert.Equal(t, "2021-09-30T12:00:00Z", out.Results[2].OccurredAt)
}

func TestList_HumanOutput(t *testing.T) {
	a := seededApp(t)
	cmd := &ListCommand{Limit: 2, globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a))
	})

	assert.Contains(t, output, "Found 3 incidents")
	assert.Contains(t, output, "1. JA100  THEFT / OVER $500")
	assert.Contains(t, output, "2021-03-01 23:30 · STREET")
	assert.Contains(t, output, "2. JA101")
	assert.Contains(t, output, "· arrest")
	assert.NotContains(t, output, "JA102")
}

func TestList_NoResults(t *testing.T) {
	a := seededApp(t)
	cmd := &ListCommand{RangeFlags: RangeFlags{From: "2021-04-01", To: "2021-04-02"}, Limit: 20, globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a))
	})
	assert.Contains(t, output, "No incidents found")
}

func TestList_NegativeLimit(t *testing.T) {
	a := seededApp(t)
	err := (&ListCommand{Limit: -1, globals: &GlobalFlags{}}).run(context.Background(), a)
	assert.Error(t, err)
}
