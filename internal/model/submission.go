package model

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a registered player identity. Names are unique; an agent keeps
// its row across submissions so leaderboards join on a stable id.
type Agent struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Faction   Faction   `json:"faction"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Submission is an agent's stat snapshot scoped by (agent, audience scope,
// time window). At most one current submission exists per scope triple —
// a newer submission for the same triple replaces the prior one in place.
type Submission struct {
	ID            uuid.UUID          `json:"id"`
	AgentID       uuid.UUID          `json:"agent_id"`
	AudienceScope string             `json:"audience_scope"` // "" = global
	TimeWindow    string             `json:"time_window"`    // "" = unlabeled
	AP            int64              `json:"ap"`
	Metrics       map[string]float64 `json:"metrics"`
	CycleName     *string            `json:"cycle_name,omitempty"`
	CyclePoints   *int64             `json:"cycle_points,omitempty"`
	SubmittedAt   time.Time          `json:"submitted_at"`
}

// AgentSubmission joins a current submission with its agent's identity.
// This is the candidate shape the ranking engine consumes.
type AgentSubmission struct {
	AgentName     string             `json:"agent_name"`
	Faction       Faction            `json:"faction"`
	AudienceScope string             `json:"audience_scope"`
	TimeWindow    string             `json:"time_window"`
	AP            int64              `json:"ap"`
	Metrics       map[string]float64 `json:"metrics"`
	SubmittedAt   time.Time          `json:"submitted_at"`
}
