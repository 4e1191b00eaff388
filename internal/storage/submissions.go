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

// UpsertSubmission stores a submission, replacing any prior one for the same
// (agent, audience scope, time window) triple. The replace is a single
// statement, so readers never observe a missing row between delete and
// insert.
func (db *DB) UpsertSubmission(ctx context.Context, sub model.Submission) (model.Submission, error) {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}

	err := WithRetry(ctx, 3, 50*time.Millisecond, func() error {
		return db.pool.QueryRow(ctx,
			`INSERT INTO submissions
			   (id, agent_id, audience_scope, time_window, ap, metrics,
			    cycle_name, cycle_points, submitted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (agent_id, audience_scope, time_window) DO UPDATE SET
			   ap = EXCLUDED.ap,
			   metrics = EXCLUDED.metrics,
			   cycle_name = EXCLUDED.cycle_name,
			   cycle_points = EXCLUDED.cycle_points,
			   submitted_at = EXCLUDED.submitted_at
			 RETURNING id`,
			sub.ID, sub.AgentID, sub.AudienceScope, sub.TimeWindow, sub.AP,
			sub.Metrics, sub.CycleName, sub.CyclePoints, sub.SubmittedAt,
		).Scan(&sub.ID)
	})
	if err != nil {
		return model.Submission{}, fmt.Errorf("storage: upsert submission: %w", err)
	}
	return sub, nil
}

// CurrentSubmissions returns the current submission rows joined with agent
// identity. Nil filters match everything, including the empty defaults.
func (db *DB) CurrentSubmissions(ctx context.Context, scope, window *string) ([]model.AgentSubmission, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT a.name, a.faction, s.audience_scope, s.time_window,
		        s.ap, s.metrics, s.submitted_at
		 FROM submissions s
		 JOIN agents a ON a.id = s.agent_id
		 WHERE ($1::text IS NULL OR s.audience_scope = $1)
		   AND ($2::text IS NULL OR s.time_window = $2)
		 ORDER BY a.name, s.submitted_at DESC, s.audience_scope, s.time_window`,
		scope, window,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: query current submissions: %w", err)
	}
	defer rows.Close()

	var out []model.AgentSubmission
	for rows.Next() {
		var sub model.AgentSubmission
		if err := rows.Scan(&sub.AgentName, &sub.Faction, &sub.AudienceScope,
			&sub.TimeWindow, &sub.AP, &sub.Metrics, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("storage: scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate submissions: %w", err)
	}
	return out, nil
}

// AllCurrentSubmissions returns every current submission across all scopes
// and windows. The recompute job consumes this.
func (db *DB) AllCurrentSubmissions(ctx context.Context) ([]model.AgentSubmission, error) {
	return db.CurrentSubmissions(ctx, nil, nil)
}

// LatestSubmissionForAgent returns the agent's most recent submission across
// every scope triple.
func (db *DB) LatestSubmissionForAgent(ctx context.Context, agentID uuid.UUID) (model.Submission, error) {
	var sub model.Submission
	err := db.pool.QueryRow(ctx,
		`SELECT id, agent_id, audience_scope, time_window, ap, metrics,
		        cycle_name, cycle_points, submitted_at
		 FROM submissions
		 WHERE agent_id = $1
		 ORDER BY submitted_at DESC
		 LIMIT 1`,
		agentID,
	).Scan(
		&sub.ID, &sub.AgentID, &sub.AudienceScope, &sub.TimeWindow, &sub.AP,
		&sub.Metrics, &sub.CycleName, &sub.CyclePoints, &sub.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Submission{}, ErrNotFound
		}
		return model.Submission{}, fmt.Errorf("storage: latest submission: %w", err)
	}
	return sub, nil
}
