package model

import "time"

// LeaderboardRow is one ranked row from the direct query path. Metrics is a
// flattened view of every numeric metric on the winning submission, so one
// leaderboard call can drive several display columns without refetching.
type LeaderboardRow struct {
	AgentName string             `json:"agent_name"`
	Faction   Faction            `json:"faction"`
	Value     float64            `json:"value"`
	Metrics   map[string]float64 `json:"metrics"`
}

// BoardEntry is one ranked row inside a cached snapshot.
type BoardEntry struct {
	Rank      int     `json:"rank"`
	AgentName string  `json:"agent_name"`
	Value     float64 `json:"value"`
}

// CachedBoard is the denormalized top-N snapshot for one (metric, faction)
// pair, rebuilt wholesale by the recompute job. It is an optimization layer:
// always re-derivable from current submissions.
type CachedBoard struct {
	Metric      string       `json:"metric"`
	Faction     Faction      `json:"faction"`
	Leaders     []BoardEntry `json:"leaders"`
	GeneratedAt time.Time    `json:"generated_at"`
}
