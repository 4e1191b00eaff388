package model

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a managed credential for the HTTP API. The raw key is shown once
// at creation; only its Argon2id hash is stored. Prefix is the first
// characters of the raw key, kept in clear for O(1) lookup before the hash
// check.
type APIKey struct {
	ID         uuid.UUID  `json:"id"`
	Prefix     string     `json:"prefix"`
	KeyHash    string     `json:"-"`
	Label      string     `json:"label"`
	Role       AgentRole  `json:"role"`
	AgentName  *string    `json:"agent_name,omitempty"` // set when the key acts for one agent
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}
