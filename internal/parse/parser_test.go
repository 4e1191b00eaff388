package parse

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeboard/primeboard/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseLineSemantic(t *testing.T) {
	p := New(NewMemoryCycleStore(), testLogger())

	line := "ALL TIME SpaceCat42 Enlightened 2026-08-30 21:19:25 16 91250000 88000000 4821 - 45.7 +Theta 3341"
	rec, err := p.ParseLine(context.Background(), line)
	require.NoError(t, err)

	assert.Equal(t, "ALL TIME", rec.TimeSpan)
	assert.Equal(t, "SpaceCat42", rec.AgentName)
	assert.Equal(t, model.FactionENL, rec.Faction)
	assert.Equal(t, "2026-08-30", rec.Date)
	assert.Equal(t, "21:19:25", rec.Time)
	assert.Equal(t, int64(16), rec.Level)
	assert.Equal(t, int64(91250000), rec.LifetimeAP)
	assert.Equal(t, int64(88000000), rec.CurrentAP)

	assert.Equal(t, int64(4821), rec.Metrics["unique_portals_visited"])
	_, dashKept := rec.Metrics["unique_portals_drone_visited"]
	assert.False(t, dashKept, "dash placeholder must not become a value")
	assert.Equal(t, 45.7, rec.Metrics["furthest_drone_distance"])

	require.NotNil(t, rec.CycleName)
	assert.Equal(t, "Theta", *rec.CycleName)
	require.NotNil(t, rec.CyclePoints)
	assert.Equal(t, int64(3341), *rec.CyclePoints)
	assert.True(t, rec.CycleExplicit)
}

func TestParseLineAgentNameWithSpaces(t *testing.T) {
	p := New(NewMemoryCycleStore(), testLogger())

	rec, err := p.ParseLine(context.Background(), "NOW blue space fish RES 2026-01-02 09:15 8 1,234,567 1,000")
	require.NoError(t, err)
	assert.Equal(t, "blue space fish", rec.AgentName)
	assert.Equal(t, model.FactionRES, rec.Faction)
	assert.Equal(t, "09:15:00", rec.Time, "hh:mm pads to wall-clock form")
	assert.Equal(t, int64(1234567), rec.LifetimeAP, "comma grouping strips")
}

func TestParseLineFactionCaseInsensitive(t *testing.T) {
	p := New(NewMemoryCycleStore(), testLogger())
	for _, raw := range []string{"enl", "ENL", "Enlightened", "ENLIGHTENED"} {
		rec, err := p.ParseLine(context.Background(), "WEEK Nova "+raw+" 2026-08-30 10:00:00 5 100 50")
		require.NoError(t, err, raw)
		assert.Equal(t, model.FactionENL, rec.Faction, raw)
	}
}

func TestParseLineRejectsBadLevel(t *testing.T) {
	p := New(NewMemoryCycleStore(), testLogger())
	for _, lvl := range []string{"0", "17", "-3"} {
		_, err := p.ParseLine(context.Background(), "ALL TIME Nova ENL 2026-08-30 10:00:00 "+lvl+" 100 50")
		require.Error(t, err, "level %s", lvl)
	}
}

func TestParseLineNotAStatLine(t *testing.T) {
	p := New(NewMemoryCycleStore(), testLogger())
	for _, line := range []string{
		"hello everyone, new scores below",
		"",
		"42",
	} {
		_, err := p.ParseLine(context.Background(), line)
		assert.ErrorIs(t, err, ErrNotAStatLine, line)
	}
}

func TestParseBatchThreadsCycleForward(t *testing.T) {
	store := NewMemoryCycleStore()
	p := New(store, testLogger())

	text := strings.Join([]string{
		"ALL TIME Alpha ENL 2026-08-30 10:00:00 10 5000 4000 100 +Theta 991",
		"ALL TIME Beta RES 2026-08-30 10:01:00 11 6000 5000 200",
	}, "\n")

	res := p.ParseBatch(context.Background(), text)
	require.Len(t, res.Records, 2)
	assert.Empty(t, res.Rejections)

	first, second := res.Records[0], res.Records[1]
	require.NotNil(t, first.CycleName)
	assert.Equal(t, "Theta", *first.CycleName)
	assert.True(t, first.CycleExplicit)

	require.NotNil(t, second.CycleName, "later lines inherit the active cycle")
	assert.Equal(t, "Theta", *second.CycleName)
	assert.Nil(t, second.CyclePoints)
	assert.False(t, second.CycleExplicit)

	// The store carries the cycle across batches too.
	name, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Theta", name)
}

func TestParseBatchPartialFailure(t *testing.T) {
	p := New(NewMemoryCycleStore(), testLogger())

	text := strings.Join([]string{
		"pasting my stats, hold on",
		"ALL TIME Alpha ENL 2026-08-30 10:00:00 10 5000 4000",
		"ALL TIME Broken ENL 2026-08-30 10:00:00 99 5000 4000",
		"ALL TIME Gamma RES 2026-08-30 10:02:00 12 7000 6000",
	}, "\n")

	res := p.ParseBatch(context.Background(), text)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Alpha", res.Records[0].AgentName)
	assert.Equal(t, "Gamma", res.Records[1].AgentName)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, 3, res.Rejections[0].Line)
	assert.Contains(t, res.Rejections[0].Reason, "level")
}

func TestFixedWidthStrategy(t *testing.T) {
	s := newFixedWidthStrategy()

	// Lay values out at the strategy's own column offsets.
	cells := map[string]string{
		"time_span":     "ALL TIME",
		"agent_name":    "padded mapper",
		"agent_faction": "Resistance",
		"date":          "2026-08-30",
		"time":          "18:45:00",
		"level":         "13",
		"lifetime_ap":   "44,000,000",
		"current_ap":    "2,000",
		"hacks":         "31337",
	}
	var b strings.Builder
	for _, c := range s.columns {
		v := cells[c.field]
		width := c.end - c.start
		if len(v) > width {
			t.Fatalf("cell %q wider than column %s", v, c.field)
		}
		b.WriteString(v)
		b.WriteString(strings.Repeat(" ", width-len(v)))
	}
	b.WriteString(" +Hulong 812")

	rec, err := s.TryParse(b.String())
	require.NoError(t, err)
	require.NoError(t, finalize(rec))

	assert.Equal(t, "padded mapper", rec.AgentName)
	assert.Equal(t, model.FactionRES, rec.Faction)
	assert.Equal(t, int64(13), rec.Level)
	assert.Equal(t, int64(44000000), rec.LifetimeAP)
	assert.Equal(t, int64(31337), rec.Metrics["hacks"])
	require.NotNil(t, rec.CycleName)
	assert.Equal(t, "Hulong", *rec.CycleName)
	require.NotNil(t, rec.CyclePoints)
	assert.Equal(t, int64(812), *rec.CyclePoints)
}

func TestFixedWidthDeclinesUnalignedLine(t *testing.T) {
	s := newFixedWidthStrategy()
	_, err := s.TryParse("ALL TIME Alpha ENL 2026-08-30 10:00:00 10 5000 4000")
	assert.ErrorIs(t, err, errStrategyMiss)
}

func TestHeaderStrategyTabbed(t *testing.T) {
	header := strings.Join([]string{
		"Time Span", "Agent Name", "Agent Faction",
		"Date (yyyy-mm-dd)", "Time (hh:mm:ss)",
		"Level", "Lifetime AP", "Current AP", "Hacks", "+Hulong",
	}, "\t")
	require.True(t, looksLikeHeader(header))

	s := newHeaderStrategy(header)
	row := strings.Join([]string{
		"ALL TIME", "tab separated agent", "RES",
		"2026-08-30", "07:30", "9", "8,000,000", "123", "42", "1771",
	}, "\t")

	rec, err := s.TryParse(row)
	require.NoError(t, err)
	require.NoError(t, finalize(rec))

	assert.Equal(t, "tab separated agent", rec.AgentName)
	assert.Equal(t, "07:30:00", rec.Time)
	assert.Equal(t, int64(9), rec.Level)
	assert.Equal(t, int64(42), rec.Metrics["hacks"])
	require.NotNil(t, rec.CycleName)
	assert.Equal(t, "Hulong", *rec.CycleName)
	require.NotNil(t, rec.CyclePoints)
	assert.Equal(t, int64(1771), *rec.CyclePoints)
	assert.True(t, rec.CycleExplicit)
}

func TestHeaderStrategyDeclinesWithoutHeader(t *testing.T) {
	var s *headerStrategy
	_, err := s.TryParse("anything")
	assert.ErrorIs(t, err, errStrategyMiss)
}

func TestLooksLikeHeaderRejectsDataLines(t *testing.T) {
	assert.False(t, looksLikeHeader("ALL TIME Alpha ENL 2026-08-30 10:00:00 10 5000 4000"))
	assert.False(t, looksLikeHeader("random prose with no columns"))
}

func TestExtractCycle(t *testing.T) {
	tests := []struct {
		name      string
		tokens    []string
		wantRest  []string
		wantName  string
		wantPts   int64
		hasPoints bool
		found     bool
	}{
		{
			name:      "trailing pair",
			tokens:    []string{"100", "200", "+Theta", "3341"},
			wantRest:  []string{"100", "200"},
			wantName:  "Theta",
			wantPts:   3341,
			hasPoints: true,
			found:     true,
		},
		{
			name:     "name without points",
			tokens:   []string{"100", "+Theta"},
			wantRest: []string{"100"},
			wantName: "Theta",
			found:    true,
		},
		{
			name:     "no marker",
			tokens:   []string{"100", "200"},
			wantRest: []string{"100", "200"},
		},
		{
			name:     "bare plus is not a marker",
			tokens:   []string{"100", "+"},
			wantRest: []string{"100", "+"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, name, pts := extractCycle(tt.tokens)
			assert.Equal(t, tt.wantRest, rest)
			if !tt.found {
				assert.Nil(t, name)
				return
			}
			require.NotNil(t, name)
			assert.Equal(t, tt.wantName, *name)
			if tt.hasPoints {
				require.NotNil(t, pts)
				assert.Equal(t, tt.wantPts, *pts)
			} else {
				assert.Nil(t, pts)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(1234), coerce("1,234"))
	assert.Equal(t, int64(7), coerce("7.0"), "integral floats collapse")
	assert.Equal(t, 3.25, coerce("3.25"))
	assert.Nil(t, coerce("-"))
	assert.Nil(t, coerce("—"))
	assert.Nil(t, coerce(""))
	assert.Equal(t, "Onyx", coerce("Onyx"))
}
