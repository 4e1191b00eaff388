// Package recompute rebuilds the denormalized leaderboard snapshots. One
// run sums every current submission per agent, ranks the totals per
// (metric, faction) pair, and replaces each cached board that has data.
// Pairs with no qualifying submissions get no snapshot; a pair that loses
// all its data has its stale snapshot pruned. The cache is purely derived
// state: a failed run leaves the previous snapshots serving until the next
// success.
package recompute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/primeboard/primeboard/internal/catalog"
	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/telemetry"
)

// DefaultTopN is how many entries each cached board keeps.
const DefaultTopN = 50

// snapshot writes per run happen concurrently, but bounded: one run must
// not monopolize the pool.
const writeConcurrency = 4

// ErrAlreadyRunning reports that a recompute was requested while one was in
// flight. The request is a no-op; callers surface it as "skipped".
var ErrAlreadyRunning = errors.New("recompute: already running")

// Store is the storage surface a rebuild needs.
type Store interface {
	// AllCurrentSubmissions returns every current submission joined with
	// its agent, across all scopes and windows.
	AllCurrentSubmissions(ctx context.Context) ([]model.AgentSubmission, error)
	// ReplaceBoard atomically swaps the snapshot for one (metric, faction)
	// pair.
	ReplaceBoard(ctx context.Context, board model.CachedBoard) error
	// DeleteBoard drops the snapshot for one (metric, faction) pair.
	// Deleting an absent snapshot is not an error.
	DeleteBoard(ctx context.Context, metric string, faction model.Faction) error
}

// Builder runs leaderboard cache rebuilds. At most one run is in flight at
// a time per Builder.
type Builder struct {
	store  Store
	logger *slog.Logger
	topN   int

	running atomic.Bool
	now     func() time.Time

	pairsRebuilt metric.Int64Counter
}

// New creates a Builder. topN <= 0 selects DefaultTopN.
func New(store Store, topN int, logger *slog.Logger) *Builder {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if logger == nil {
		logger = slog.Default()
	}
	meter := telemetry.Meter("primeboard/recompute")
	pairs, _ := meter.Int64Counter("primeboard.recompute.pairs_rebuilt",
		metric.WithDescription("Leaderboard (metric, faction) snapshots rebuilt"),
	)
	return &Builder{
		store:        store,
		logger:       logger,
		topN:         topN,
		now:          time.Now,
		pairsRebuilt: pairs,
	}
}

// Run rebuilds the snapshot for every (ranked metric, faction) pair that
// has qualifying submissions and returns how many pairs were written.
// Pairs without data are pruned from the cache instead, so readers never
// see a board for a combination absent from the data. A concurrent call
// returns ErrAlreadyRunning without touching the cache.
func (b *Builder) Run(ctx context.Context) (int, error) {
	if !b.running.CompareAndSwap(false, true) {
		return 0, ErrAlreadyRunning
	}
	defer b.running.Store(false)

	start := b.now()
	subs, err := b.store.AllCurrentSubmissions(ctx)
	if err != nil {
		return 0, fmt.Errorf("recompute: load submissions: %w", err)
	}

	generatedAt := b.now()
	var boards []model.CachedBoard
	var stale []model.CachedBoard
	for _, desc := range catalog.Ranked() {
		for _, faction := range model.Factions() {
			board := buildBoard(desc, faction, subs, b.topN)
			if len(board.Leaders) == 0 {
				stale = append(stale, board)
				continue
			}
			board.GeneratedAt = generatedAt
			boards = append(boards, board)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(writeConcurrency)
	for _, board := range boards {
		g.Go(func() error {
			if err := b.store.ReplaceBoard(gctx, board); err != nil {
				return fmt.Errorf("recompute: replace %s/%s: %w", board.Metric, board.Faction, err)
			}
			return nil
		})
	}
	for _, board := range stale {
		g.Go(func() error {
			if err := b.store.DeleteBoard(gctx, board.Metric, board.Faction); err != nil {
				return fmt.Errorf("recompute: prune %s/%s: %w", board.Metric, board.Faction, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	b.pairsRebuilt.Add(ctx, int64(len(boards)))
	b.logger.Info("leaderboard cache rebuilt",
		"pairs", len(boards),
		"pruned", len(stale),
		"submissions", len(subs),
		"duration", b.now().Sub(start),
	)
	return len(boards), nil
}

// RunPeriodic triggers Run on a fixed interval until ctx is cancelled. Run
// errors are logged, not fatal; the loop keeps the cache fresh best-effort.
func (b *Builder) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Run(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
				b.logger.Error("periodic recompute failed", "error", err)
			}
		}
	}
}

// buildBoard ranks one faction's agents by summed metric value across all
// their current submissions.
func buildBoard(desc catalog.Descriptor, faction model.Faction, subs []model.AgentSubmission, topN int) model.CachedBoard {
	totals := make(map[string]float64)
	for _, sub := range subs {
		if sub.Faction != faction {
			continue
		}
		if desc.Kind == catalog.KindTopLevel {
			totals[sub.AgentName] += float64(sub.AP)
			continue
		}
		if v, ok := sub.Metrics[desc.ID]; ok {
			totals[sub.AgentName] += v
		}
	}

	entries := make([]model.BoardEntry, 0, len(totals))
	for name, value := range totals {
		entries = append(entries, model.BoardEntry{AgentName: name, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].AgentName < entries[j].AgentName
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return model.CachedBoard{Metric: desc.ID, Faction: faction, Leaders: entries}
}
