package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/primeboard/primeboard/internal/model"
)

// CreateAPIKey inserts a new API key record. The raw key never reaches
// storage: callers hash it first.
func (db *DB) CreateAPIKey(ctx context.Context, key model.APIKey) (model.APIKey, error) {
	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	if _, err := db.pool.Exec(ctx,
		`INSERT INTO api_keys (id, prefix, key_hash, label, role, agent_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Prefix, key.KeyHash, key.Label, key.Role, key.AgentName, key.CreatedAt,
	); err != nil {
		return model.APIKey{}, fmt.Errorf("storage: create api key: %w", err)
	}
	return key, nil
}

// GetAPIKeyByPrefix looks up a single active key by its clear-text prefix.
// The prefix pre-filter keeps token exchange to one Argon2 verification.
// Returns ErrNotFound when no active key matches.
func (db *DB) GetAPIKeyByPrefix(ctx context.Context, prefix string) (model.APIKey, error) {
	var k model.APIKey
	err := db.pool.QueryRow(ctx,
		`SELECT id, prefix, key_hash, label, role, agent_name, created_at, last_used_at, revoked_at
		 FROM api_keys
		 WHERE prefix = $1 AND revoked_at IS NULL
		 LIMIT 1`,
		prefix,
	).Scan(&k.ID, &k.Prefix, &k.KeyHash, &k.Label, &k.Role, &k.AgentName,
		&k.CreatedAt, &k.LastUsedAt, &k.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.APIKey{}, ErrNotFound
		}
		return model.APIKey{}, fmt.Errorf("storage: get api key by prefix: %w", err)
	}
	return k, nil
}

// TouchAPIKey records a successful use of the key. Best-effort: a failure
// here must not fail the request.
func (db *DB) TouchAPIKey(ctx context.Context, id uuid.UUID) {
	if _, err := db.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = now() WHERE id = $1`, id,
	); err != nil {
		db.logger.Warn("storage: touch api key", "error", err)
	}
}

// RevokeAPIKey disables a key. Idempotent; revoking twice keeps the first
// revocation time.
func (db *DB) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE api_keys SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("storage: revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
