package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/incidentlens/internal/incident"
)

// runSummaryJSON runs summary with --json and decodes the result.
func runSummaryJSON(t *testing.T, a *app, cmd *SummaryCommand) incident.Summary {
	t.Helper()
	cmd.globals = &GlobalFlags{JSON: true}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a))
	})

	var s incident.Summary
	require.NoError(t, json.Unmarshal([]byte(output), &s))
	return s
}

func TestSummary_FullDataset(t *testing.T) {
	a := seededApp(t)
	s := runSummaryJSON(t, a, &SummaryCommand{Top: -1})

	assert.Equal(t, "date", s.Mode)
	assert.Equal(t, 3, s.Total)

	require.Len(t, s.ByType, 2)
	assert.Equal(t, "THEFT", s.ByType[0].Category)
	assert.Equal(t, 2, s.ByType[0].Count)
	assert.InDelta(t, 0.5, s.ByType[0].ArrestRate, 1e-9)
	assert.Equal(t, "BATTERY", s.ByType[1].Category)
	assert.Equal(t, 1, s.ByType[1].Count)

	require.Len(t, s.ByLocation, 2)
	assert.Equal(t, "STREET", s.ByLocation[0].Category)
	assert.Equal(t, "ALLEY", s.ByLocation[1].Category)

	assert.Equal(t, []string{"STREET", "ALLEY"}, s.Rows)
	assert.Equal(t, []string{"THEFT", "BATTERY"}, s.Cols)
	require.Len(t, s.Heatmap, 4)
	assert.Equal(t, 2, s.Heatmap[0].Count) // STREET x THEFT
	assert.Equal(t, 0, s.Heatmap[1].Count) // STREET x BATTERY
	assert.Equal(t, 0, s.Heatmap[2].Count) // ALLEY x THEFT
	assert.Equal(t, 1, s.Heatmap[3].Count) // ALLEY x BATTERY

	require.NotNil(t, s.Extent)
	assert.Equal(t, 2, s.Extent.Points)
}

func TestSummary_YearRange(t *testing.T) {
	a := seededApp(t)
	cmd := &SummaryCommand{RangeFlags: RangeFlags{Mode: "year", From: "2021", To: "2021"}, Top: -1}
	s := runSummaryJSON(t, a, cmd)

	assert.Equal(t, "year", s.Mode)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, incident.Range{Lower: 2021, Upper: 2021}, s.Range)

	// Tied counts keep first-seen order.
	require.Len(t, s.ByType, 2)
	assert.Equal(t, incident.DistributionEntry{Category: "THEFT", Count: 1, ArrestRate: 0}, s.ByType[0])
	assert.Equal(t, incident.DistributionEntry{Category: "BATTERY", Count: 1, ArrestRate: 0}, s.ByType[1])
}

func TestSummary_DateRangeIsInclusive(t *testing.T) {
	a := seededApp(t)

	s := runSummaryJSON(t, a, &SummaryCommand{RangeFlags: RangeFlags{From: "2021-01-01", To: "2021-12-31"}, Top: -1})
	assert.Equal(t, 2, s.Total)

	// JA100 happened at 23:30 on the upper bound's day.
	s = runSummaryJSON(t, a, &SummaryCommand{RangeFlags: RangeFlags{To: "2021-03-01"}, Top: -1})
	assert.Equal(t, 1, s.Total)
}

func TestSummary_RangeBeyondDatasetIsClamped(t *testing.T) {
	a := seededApp(t)
	s := runSummaryJSON(t, a, &SummaryCommand{RangeFlags: RangeFlags{From: "1990-01-01", To: "2030-12-31"}, Top: -1})

	assert.Equal(t, 3, s.Total)
	full := runSummaryJSON(t, a, &SummaryCommand{Top: -1})
	assert.Equal(t, full.ByType, s.ByType)
	assert.Equal(t, full.Range, s.Range)
}

func TestSummary_EmptyRange(t *testing.T) {
	a := seededApp(t)
	cmd := &SummaryCommand{RangeFlags: RangeFlags{From: "2021-04-01", To: "2021-04-30"}, Top: -1, globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a))
	})
	assert.Contains(t, output, "Incidents:     0")
	assert.Contains(t, output, "No incidents in range.")
}

func TestSummary_TopCapsHeatmap(t *testing.T) {
	a := seededApp(t)
	s := runSummaryJSON(t, a, &SummaryCommand{Top: 1})

	assert.Equal(t, []string{"STREET"}, s.Rows)
	assert.Equal(t, []string{"THEFT"}, s.Cols)
	require.Len(t, s.Heatmap, 1)
	assert.Equal(t, 2, s.Heatmap[0].Count)
	// Distributions themselves are never capped.
	assert.Len(t, s.ByType, 2)
}

func TestSummary_TopFromConfig(t *testing.T) {
	a := seededApp(t)
	a.cfg.Dashboard.TopN = 1
	s := runSummaryJSON(t, a, &SummaryCommand{Top: -1})
	assert.Len(t, s.Cols, 1)
}

func TestSummary_HumanOutput(t *testing.T) {
	a := seededApp(t)
	cmd := &SummaryCommand{Top: -1, globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.run(context.Background(), a))
	})

	assert.Contains(t, output, "Incident Summary (date: 2021-03-01 23:30 .. 2022-06-15 08:05)")
	assert.Contains(t, output, "Incidents:     3")
	assert.Contains(t, output, "Extent:")
	assert.Contains(t, output, "Incident Types:")
	assert.Contains(t, output, "Location Types:")
	assert.Contains(t, output, "50.0% arrested")
	assert.Contains(t, output, "Heat Map (location x type):")
	assert.Contains(t, output, "[1] THEFT")
	assert.Contains(t, output, "[2] BATTERY")
}

func TestSummary_InvalidBound(t *testing.T) {
	a := seededApp(t)

	err := (&SummaryCommand{RangeFlags: RangeFlags{From: "yesterday"}, Top: -1, globals: &GlobalFlags{}}).run(context.Background(), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --from")

	err = (&SummaryCommand{RangeFlags: RangeFlags{Mode: "year", To: "20x2"}, Top: -1, globals: &GlobalFlags{}}).run(context.Background(), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --to")
}

func TestSummary_EmptyCache(t *testing.T) {
	a := newTestApp(t)
	err := (&SummaryCommand{Top: -1, globals: &GlobalFlags{}}).run(context.Background(), a)
	assert.ErrorIs(t, err, incident.ErrEmptyDataset)
}

func TestSummary_NoBoundsForMode(t *testing.T) {
	a := newTestApp(t)
	csv := "Case Number,Primary Type,Location Description,Year\nJA1,THEFT,STREET,2021\n"
	captureOutput(t, func() {
		require.NoError(t, (&ImportCommand{CSV: writeCSV(t, csv), globals: &GlobalFlags{}}).run(context.Background(), a, nil))
	})

	err := (&SummaryCommand{Top: -1, globals: &GlobalFlags{}}).run(context.Background(), a)
	assert.ErrorIs(t, err, incident.ErrNoBounds)

	// The same data works in year mode.
	s := runSummaryJSON(t, a, &SummaryCommand{RangeFlags: RangeFlags{Mode: "year"}, Top: -1})
	assert.Equal(t, 1, s.Total)
}

func TestParseBound(t *testing.T) {
	b, err := parseBound(incident.ByYear, " 2021 ", false)
	require.NoError(t, err)
	assert.Equal(t, 2021.0, b)

	lo, err := parseBound(incident.ByDate, "2021-03-01", false)
	require.NoError(t, err)
	hi, err := parseBound(incident.ByDate, "2021-03-01", true)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-01 00:00", formatBound(incident.ByDate, lo))
	assert.Equal(t, "2021-03-01 23:59", formatBound(incident.ByDate, hi))

	exact, err := parseBound(incident.ByDate, "2021-03-01T10:00:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-01 10:00", formatBound(incident.ByDate, exact))

	_, err = parseBound(incident.ByDate, "03/01/2021", false)
	assert.Error(t, err)
}
