package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/primeboard/primeboard/internal/auth"
	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/service/ingest"
	"github.com/primeboard/primeboard/internal/service/rank"
	"github.com/primeboard/primeboard/internal/service/recompute"
	"github.com/primeboard/primeboard/internal/storage"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	db                  *storage.DB
	jwtMgr              *auth.JWTManager
	ingestSvc           *ingest.Service
	rankSvc             *rank.Service
	builder             *recompute.Builder
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	maxRequestBodyBytes int64
}

// HandlersDeps holds all dependencies for constructing Handlers.
type HandlersDeps struct {
	DB                  *storage.DB
	JWTMgr              *auth.JWTManager
	IngestSvc           *ingest.Service
	RankSvc             *rank.Service
	Builder             *recompute.Builder
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		db:                  d.DB,
		jwtMgr:              d.JWTMgr,
		ingestSvc:           d.IngestSvc,
		rankSvc:             d.RankSvc,
		builder:             d.Builder,
		logger:              d.Logger,
		startedAt:           time.Now(),
		version:             d.Version,
		maxRequestBodyBytes: d.MaxRequestBodyBytes,
	}
}

// AuthTokenRequest is the body for POST /auth/token.
type AuthTokenRequest struct {
	APIKey string `json:"api_key"`
}

// AuthTokenResponse carries the issued JWT.
type AuthTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

// apiKeyPrefixLen is how many leading characters of a raw key are stored in
// clear for lookup.
const apiKeyPrefixLen = 8

// HandleAuthToken handles POST /auth/token: exchanges a raw API key for a
// short-lived JWT. Failure paths run a dummy Argon2 verification so timing
// does not reveal whether a prefix exists.
func (h *Handlers) HandleAuthToken(w http.ResponseWriter, r *http.Request) {
	var req AuthTokenRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if len(req.APIKey) <= apiKeyPrefixLen {
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	key, err := h.db.GetAPIKeyByPrefix(r.Context(), req.APIKey[:apiKeyPrefixLen])
	if err != nil {
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	ok, err := auth.VerifyAPIKey(req.APIKey, key.KeyHash)
	if err != nil || !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	token, exp, err := h.jwtMgr.IssueToken(key)
	if err != nil {
		h.logger.Error("issue token", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to issue token")
		return
	}
	h.db.TouchAPIKey(r.Context(), key.ID)

	writeJSON(w, r, http.StatusOK, AuthTokenResponse{
		Token:     token,
		ExpiresAt: exp,
		Role:      string(key.Role),
	})
}

// HandleHealth handles GET /health: liveness plus a database ping.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		h.logger.Warn("health db ping failed", "error", err)
	}
	writeJSON(w, r, code, map[string]any{
		"status":  status,
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}

// SeedAdminKey ensures a usable admin credential exists. When the key's
// prefix is not present yet, it is hashed and stored with the admin role.
// Called once at startup.
func SeedAdminKey(ctx context.Context, db *storage.DB, rawKey string) error {
	if len(rawKey) <= apiKeyPrefixLen {
		return fmt.Errorf("server: admin api key too short")
	}
	_, err := db.GetAPIKeyByPrefix(ctx, rawKey[:apiKeyPrefixLen])
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("server: check admin key: %w", err)
	}

	hash, err := auth.HashAPIKey(rawKey)
	if err != nil {
		return fmt.Errorf("server: hash admin key: %w", err)
	}
	_, err = db.CreateAPIKey(ctx, model.APIKey{
		Prefix:  rawKey[:apiKeyPrefixLen],
		KeyHash: hash,
		Label:   "bootstrap admin",
		Role:    model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("server: seed admin key: %w", err)
	}
	return nil
}

// newRawAPIKey generates a random key with a readable prefix.
func newRawAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("server: generate api key: %w", err)
	}
	return "pk_" + hex.EncodeToString(buf), nil
}
