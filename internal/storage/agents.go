package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/primeboard/primeboard/internal/model"
)

// UpsertAgent inserts an agent by name or refreshes an existing one. An
// agent switching factions keeps its id; the faction column just updates.
func (db *DB) UpsertAgent(ctx context.Context, name string, faction model.Faction) (model.Agent, error) {
	var a model.Agent
	err := db.pool.QueryRow(ctx,
		`INSERT INTO agents (id, name, faction, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 ON CONFLICT (name) DO UPDATE
		   SET faction = EXCLUDED.faction, updated_at = now()
		 RETURNING id, name, faction, created_at, updated_at`,
		uuid.New(), name, faction,
	).Scan(&a.ID, &a.Name, &a.Faction, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Agent{}, fmt.Errorf("storage: upsert agent: %w", err)
	}
	return a, nil
}

// GetAgentByName returns an agent by exact name. Returns ErrNotFound when
// the agent has never submitted.
func (db *DB) GetAgentByName(ctx context.Context, name string) (model.Agent, error) {
	var a model.Agent
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, faction, created_at, updated_at FROM agents WHERE name = $1`,
		name,
	).Scan(&a.ID, &a.Name, &a.Faction, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Agent{}, ErrNotFound
		}
		return model.Agent{}, fmt.Errorf("storage: get agent by name: %w", err)
	}
	return a, nil
}
