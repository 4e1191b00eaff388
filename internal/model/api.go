package model

import "time"

// MaxSubmissionBodyLen caps the pasted text accepted by the ingest endpoint.
// A full Prime export with header is a few KB; 256 KB leaves generous room
// for multi-agent pastes without letting a caller fill memory.
const MaxSubmissionBodyLen = 256 * 1024

// APIResponse is the standard success envelope.
type APIResponse struct {
	Data any          `json:"data"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
)

// SubmitRequest is the request body for POST /v1/submissions: a raw pasted
// export (one stat line per newline, optional header line) plus the audience
// scope the batch belongs to.
type SubmitRequest struct {
	Text          string `json:"text"`
	AudienceScope string `json:"audience_scope,omitempty"`
}

// LineRejection reports why one pasted line was discarded. Lines that match
// no strategy at all are skipped silently and do not appear here.
type LineRejection struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// SubmitResult summarizes a batch ingest.
type SubmitResult struct {
	Accepted   int             `json:"accepted"`
	Rejected   int             `json:"rejected"`
	Skipped    int             `json:"skipped"`
	Rejections []LineRejection `json:"rejections,omitempty"`
}

// RecomputeResult reports a cache rebuild.
type RecomputeResult struct {
	Pairs   int  `json:"pairs"`
	Skipped bool `json:"skipped"` // true when another recompute was already in flight
}

// AgentRankResult is the response for GET /v1/agents/{name}/rank.
type AgentRankResult struct {
	AgentName string  `json:"agent_name"`
	Metric    string  `json:"metric"`
	Rank      int     `json:"rank"`
	Value     float64 `json:"value"`
	Of        int     `json:"of"` // total ranked agents on that board
}
