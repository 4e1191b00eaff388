// Package rank is the direct-query ranking engine: it orders the current
// submission per agent by a catalog metric and returns leaderboard rows.
// It reads through a narrow Store interface so the ordering logic tests
// without a database.
package rank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/primeboard/primeboard/internal/catalog"
	"github.com/primeboard/primeboard/internal/model"
)

// DefaultLimit is the row count returned when a query doesn't name one.
const DefaultLimit = 20

// MaxLimit caps how many rows a single leaderboard call can request.
const MaxLimit = 200

// ErrUnranked reports that an agent has no qualifying submission on the
// requested board.
var ErrUnranked = errors.New("rank: agent not ranked")

// Store supplies ranking candidates. Filters are conjunctive; a nil filter
// matches every value including the empty default.
type Store interface {
	CurrentSubmissions(ctx context.Context, scope, window *string) ([]model.AgentSubmission, error)
}

// Query selects one leaderboard.
type Query struct {
	Metric string  // catalog metric id; unknown ids fall back to "ap"
	Scope  *string // audience scope filter, nil = all scopes
	Window *string // time window filter, nil = all windows
	Limit  int     // 0 = DefaultLimit
}

// Board is one computed leaderboard. Metric carries the resolved catalog
// id, which differs from the requested one after an unknown-metric
// fallback.
type Board struct {
	Metric string                 `json:"metric"`
	Rows   []model.LeaderboardRow `json:"rows"`
}

// Service computes leaderboards from current submissions.
type Service struct {
	store  Store
	logger *slog.Logger
}

// New creates a ranking Service.
func New(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Leaderboard returns up to q.Limit rows ordered by the metric descending,
// ties broken by agent name ascending. Agents without a numeric value for
// the metric are excluded from this board only. An empty board is not an
// error.
func (s *Service) Leaderboard(ctx context.Context, q Query) (*Board, error) {
	desc := s.resolveMetric(q.Metric)
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := s.compute(ctx, desc, q)
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return &Board{Metric: desc.ID, Rows: rows}, nil
}

// AgentRank locates one agent on a metric board. The board is computed the
// same way Leaderboard computes it, without a row cap, so the reported rank
// matches what the full leaderboard would show.
func (s *Service) AgentRank(ctx context.Context, name string, q Query) (*model.AgentRankResult, error) {
	desc := s.resolveMetric(q.Metric)
	rows, err := s.compute(ctx, desc, q)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if row.AgentName == name {
			return &model.AgentRankResult{
				AgentName: name,
				Metric:    desc.ID,
				Rank:      i + 1,
				Value:     row.Value,
				Of:        len(rows),
			}, nil
		}
	}
	return nil, ErrUnranked
}

func (s *Service) resolveMetric(id string) catalog.Descriptor {
	if id == "" {
		id = catalog.DefaultMetric
	}
	desc, ok := catalog.Lookup(id)
	if !ok {
		s.logger.Warn("unknown ranking metric, falling back", "metric", id, "fallback", catalog.DefaultMetric)
		desc, _ = catalog.Lookup(catalog.DefaultMetric)
	}
	return desc
}

func (s *Service) compute(ctx context.Context, desc catalog.Descriptor, q Query) ([]model.LeaderboardRow, error) {
	subs, err := s.store.CurrentSubmissions(ctx, q.Scope, q.Window)
	if err != nil {
		return nil, fmt.Errorf("rank: load submissions: %w", err)
	}

	// Several scope triples can survive the filters for one agent; only the
	// most recent one ranks. SubmittedAt ties fall back to the scope triple
	// so the pick doesn't depend on row order.
	latest := make(map[string]model.AgentSubmission, len(subs))
	for _, sub := range subs {
		if prev, ok := latest[sub.AgentName]; ok && !supersedes(sub, prev) {
			continue
		}
		latest[sub.AgentName] = sub
	}

	rows := make([]model.LeaderboardRow, 0, len(latest))
	for _, sub := range latest {
		value, ok := metricValue(desc, sub)
		if !ok {
			continue
		}
		rows = append(rows, model.LeaderboardRow{
			AgentName: sub.AgentName,
			Faction:   sub.Faction,
			Value:     value,
			Metrics:   sub.Metrics,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].AgentName < rows[j].AgentName
	})
	return rows, nil
}

// supersedes reports whether candidate a should replace b as an agent's
// current submission: newer wins, equal timestamps resolve by the smaller
// (scope, window) pair.
func supersedes(a, b model.AgentSubmission) bool {
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.After(b.SubmittedAt)
	}
	if a.AudienceScope != b.AudienceScope {
		return a.AudienceScope < b.AudienceScope
	}
	return a.TimeWindow < b.TimeWindow
}

// metricValue extracts the ranking value for one candidate. Bag metrics the
// submission doesn't carry disqualify the candidate rather than ranking it
// at zero.
func metricValue(desc catalog.Descriptor, sub model.AgentSubmission) (float64, bool) {
	if desc.Kind == catalog.KindTopLevel {
		return float64(sub.AP), true
	}
	v, ok := sub.Metrics[desc.ID]
	return v, ok
}
