package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/primeboard/primeboard/internal/model"
)

// ReplaceBoard swaps the cached snapshot for one (metric, faction) pair in a
// single transaction. Readers see either the old snapshot or the new one,
// never a partial board.
func (db *DB) ReplaceBoard(ctx context.Context, board model.CachedBoard) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: begin replace board tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM leaderboard_boards WHERE metric = $1 AND faction = $2`,
		board.Metric, board.Faction,
	); err != nil {
		return fmt.Errorf("storage: clear board: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO leaderboard_boards (metric, faction, leaders, generated_at)
		 VALUES ($1, $2, $3, $4)`,
		board.Metric, board.Faction, board.Leaders, board.GeneratedAt,
	); err != nil {
		return fmt.Errorf("storage: insert board: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: commit replace board tx: %w", err)
	}
	return nil
}

// DeleteBoard drops the cached snapshot for one (metric, faction) pair.
// Deleting an absent snapshot is a no-op: the recompute job prunes every
// pair without data, most of which were never written.
func (db *DB) DeleteBoard(ctx context.Context, metric string, faction model.Faction) error {
	if _, err := db.pool.Exec(ctx,
		`DELETE FROM leaderboard_boards WHERE metric = $1 AND faction = $2`,
		metric, faction,
	); err != nil {
		return fmt.Errorf("storage: delete board: %w", err)
	}
	return nil
}

// GetBoard returns the cached snapshot for one (metric, faction) pair.
// Returns ErrNotFound before the first recompute has covered the pair.
func (db *DB) GetBoard(ctx context.Context, metric string, faction model.Faction) (model.CachedBoard, error) {
	board := model.CachedBoard{Metric: metric, Faction: faction}
	err := db.pool.QueryRow(ctx,
		`SELECT leaders, generated_at FROM leaderboard_boards
		 WHERE metric = $1 AND faction = $2`,
		metric, faction,
	).Scan(&board.Leaders, &board.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CachedBoard{}, ErrNotFound
		}
		return model.CachedBoard{}, fmt.Errorf("storage: get board: %w", err)
	}
	return board, nil
}
