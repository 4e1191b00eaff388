package format

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/parse"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExportLineRoundTrip(t *testing.T) {
	p := parse.New(parse.NewMemoryCycleStore(), quietLogger())

	line := "ALL TIME round tripper RES 2026-08-30 21:19:25 14 91250000 88000000 4821 - 45.7 120 +Theta 3341"
	first, err := p.ParseLine(context.Background(), line)
	require.NoError(t, err)

	rendered := ExportLine(first)
	second, err := p.ParseLine(context.Background(), rendered)
	require.NoError(t, err)

	assert.Equal(t, first.AgentName, second.AgentName)
	assert.Equal(t, first.Faction, second.Faction)
	assert.Equal(t, first.TimeSpan, second.TimeSpan)
	assert.Equal(t, first.Date, second.Date)
	assert.Equal(t, first.Time, second.Time)
	assert.Equal(t, first.Level, second.Level)
	assert.Equal(t, first.LifetimeAP, second.LifetimeAP)
	assert.Equal(t, first.CurrentAP, second.CurrentAP)
	assert.Equal(t, first.Metrics, second.Metrics)
	require.NotNil(t, second.CycleName)
	assert.Equal(t, *first.CycleName, *second.CycleName)
	require.NotNil(t, second.CyclePoints)
	assert.Equal(t, *first.CyclePoints, *second.CyclePoints)
}

func TestExportLinePlaceholdersForMissing(t *testing.T) {
	rec := &model.StatRecord{
		TimeSpan:   "WEEK",
		AgentName:  "Sparse",
		Faction:    model.FactionENL,
		Date:       "2026-08-30",
		Time:       "10:00:00",
		Level:      5,
		LifetimeAP: 1000,
		CurrentAP:  900,
		Metrics:    map[string]any{"hacks": int64(12)},
	}
	line := ExportLine(rec)
	assert.Contains(t, line, " - ")
	assert.Contains(t, line, " 12 ")
	assert.NotContains(t, line, "+", "no cycle pair without an explicit cycle")
}

func TestCategoryReport(t *testing.T) {
	theta := "Theta"
	pts := int64(3341)
	rec := &model.StatRecord{
		TimeSpan:    "ALL TIME",
		AgentName:   "Reporter",
		Faction:     model.FactionRES,
		Date:        "2026-08-30",
		Time:        "10:00:00",
		Level:       11,
		LifetimeAP:  12345678,
		CurrentAP:   1000,
		CycleName:   &theta,
		CyclePoints: &pts,
		Metrics: map[string]any{
			"hacks":           int64(4200),
			"distance_walked": 321.5,
		},
	}
	out := CategoryReport(rec)

	assert.True(t, strings.HasPrefix(out, "Reporter (RES) L11\n"))
	assert.Contains(t, out, "Cycle Theta: 3,341")
	assert.Contains(t, out, "Lifetime AP: 12,345,678 AP")
	assert.Contains(t, out, "Hacks: 4,200")
	assert.Contains(t, out, "Distance Walked: 321.5 km")
	assert.NotContains(t, out, "Resonators Deployed", "absent metrics are omitted")
}

func TestGroup(t *testing.T) {
	assert.Equal(t, "0", group(0))
	assert.Equal(t, "999", group(999))
	assert.Equal(t, "1,000", group(1000))
	assert.Equal(t, "12,345,678", group(12345678))
	assert.Equal(t, "-1,234", group(-1234))
}
