package model

// AgentRole is the RBAC role carried in JWT claims.
type AgentRole string

const (
	RoleAdmin  AgentRole = "admin"
	RoleAgent  AgentRole = "agent"
	RoleReader AgentRole = "reader"
)

// RoleRank returns the numeric rank of a role (higher = more privileges).
func RoleRank(r AgentRole) int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleAgent:
		return 2
	case RoleReader:
		return 1
	default:
		return 0
	}
}

// RoleAtLeast reports whether have meets or exceeds want.
func RoleAtLeast(have, want AgentRole) bool {
	return RoleRank(have) >= RoleRank(want)
}
