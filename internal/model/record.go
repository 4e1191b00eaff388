package model

// Level bounds for Ingress Prime agents.
const (
	MinLevel = 1
	MaxLevel = 16
)

// StatRecord is the normalized output of parsing one export line.
//
// Required fields are typed directly on the struct; every other metric lands
// in the sparse Metrics bag keyed by catalog field id. Bag values are int64,
// float64, or string — numeric coercion is best-effort, so a token that fails
// to parse for a numeric slot is kept as its raw string rather than losing
// the record.
type StatRecord struct {
	TimeSpan   string  // normalized time-span label, "" when absent
	AgentName  string  // may contain embedded spaces
	Faction    Faction // canonical ENL or RES
	Date       string  // yyyy-mm-dd
	Time       string  // hh:mm:ss (hh:mm inputs are padded with :00)
	Level      int64
	LifetimeAP int64
	CurrentAP  int64

	// Metrics holds every optional field in catalog order that the line
	// supplied. Dash placeholders are absent from the map, not zero.
	Metrics map[string]any

	// Cycle side-channel. CycleName may be inherited from the batch's active
	// cycle; CycleExplicit is true only when this line carried its own +Name
	// token, which is the only case that updates durable cycle state.
	CycleName     *string
	CyclePoints   *int64
	CycleExplicit bool

	Raw string // original line, kept for diagnostics
}

// NumericMetrics returns the bag filtered to numeric values as float64,
// dropping raw-string leftovers. Used for Submission construction and
// leaderboard snapshot enrichment.
func (r *StatRecord) NumericMetrics() map[string]float64 {
	out := make(map[string]float64, len(r.Metrics))
	for k, v := range r.Metrics {
		switch n := v.(type) {
		case int64:
			out[k] = float64(n)
		case float64:
			out[k] = n
		}
	}
	return out
}
