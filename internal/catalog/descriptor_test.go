package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankedOrderedByPriority(t *testing.T) {
	ranked := Ranked()
	require.NotEmpty(t, ranked)
	assert.Equal(t, DefaultMetric, ranked[0].ID)
	for i := 1; i < len(ranked); i++ {
		assert.Less(t, ranked[i-1].Priority, ranked[i].Priority)
	}
}

func TestByCategory(t *testing.T) {
	core := ByCategory("core")
	require.NotEmpty(t, core)
	for i, d := range core {
		assert.Equal(t, "core", d.Category)
		if i > 0 {
			assert.Less(t, core[i-1].Priority, d.Priority)
		}
	}

	assert.Empty(t, ByCategory("no_such_category"))
}

func TestRecommendedFor(t *testing.T) {
	tests := []struct {
		window string
		want   string
	}{
		{"DAILY", "hacks"},
		{"WEEKLY", "xm_collected"},
		{"LAST 7 DAYS", "xm_collected"},
		{"MONTHLY", "links_created"},
		{"ALL TIME", DefaultMetric},
		{"", DefaultMetric},
	}
	for _, tt := range tests {
		t.Run(tt.window, func(t *testing.T) {
			got := RecommendedFor(tt.window)
			assert.Equal(t, tt.want, got)

			// Every recommendation resolves in the catalog.
			_, ok := Lookup(got)
			assert.True(t, ok)
		})
	}
}
