package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// cycle_state is a singleton row: one deployment tracks one active cycle.
const cycleInstance = 1

// GetCycle returns the active cycle name, "" when none has ever been set.
func (db *DB) GetCycle(ctx context.Context) (string, error) {
	var name string
	err := db.pool.QueryRow(ctx,
		`SELECT name FROM cycle_state WHERE instance = $1`, cycleInstance,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("storage: get cycle: %w", err)
	}
	return name, nil
}

// SetCycle durably records the active cycle name.
func (db *DB) SetCycle(ctx context.Context, name string) error {
	if _, err := db.pool.Exec(ctx,
		`INSERT INTO cycle_state (instance, name, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (instance) DO UPDATE
		   SET name = EXCLUDED.name, updated_at = now()`,
		cycleInstance, name,
	); err != nil {
		return fmt.Errorf("storage: set cycle: %w", err)
	}
	return nil
}

// CycleStore adapts DB to the parser's cycle persistence interface.
type CycleStore struct {
	DB *DB
}

// Get implements parse.CycleStore.
func (s CycleStore) Get(ctx context.Context) (string, error) {
	return s.DB.GetCycle(ctx)
}

// Set implements parse.CycleStore.
func (s CycleStore) Set(ctx context.Context, name string) error {
	return s.DB.SetCycle(ctx, name)
}
