package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/primeboard/primeboard/internal/auth"
	"github.com/primeboard/primeboard/internal/catalog"
	"github.com/primeboard/primeboard/internal/format"
	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/service/rank"
	"github.com/primeboard/primeboard/internal/service/recompute"
	"github.com/primeboard/primeboard/internal/storage"
)

// HandleLeaderboard handles GET /v1/leaderboard: the direct-query ranking
// path over current submissions.
func (h *Handlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := rankQueryFromRequest(r)
	board, err := h.rankSvc.Leaderboard(r.Context(), q)
	if err != nil {
		h.logger.Error("leaderboard query", "metric", q.Metric, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to compute leaderboard")
		return
	}
	writeJSON(w, r, http.StatusOK, board)
}

// HandleAgentRank handles GET /v1/agents/{name}/rank.
func (h *Handlers) HandleAgentRank(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	q := rankQueryFromRequest(r)
	res, err := h.rankSvc.AgentRank(r.Context(), name, q)
	if err != nil {
		if errors.Is(err, rank.ErrUnranked) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "agent not ranked on this board")
			return
		}
		h.logger.Error("agent rank query", "agent", name, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to compute rank")
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// HandleAgentStats handles GET /v1/agents/{name}/stats: a categorized report
// rendered from the agent's most recent submission.
func (h *Handlers) HandleAgentStats(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	agent, err := h.db.GetAgentByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "agent not found")
			return
		}
		h.logger.Error("load agent", "agent", name, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to load agent")
		return
	}

	sub, err := h.db.LatestSubmissionForAgent(r.Context(), agent.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "agent has no submissions")
			return
		}
		h.logger.Error("load submission", "agent", name, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to load submission")
		return
	}

	rec := format.RecordFromSubmission(agent, sub)
	writeJSON(w, r, http.StatusOK, map[string]any{
		"agent_name":   agent.Name,
		"faction":      agent.Faction,
		"submitted_at": sub.SubmittedAt,
		"report":       format.CategoryReport(rec),
		"export_line":  format.ExportLine(rec),
	})
}

// HandleBoard handles GET /v1/boards/{metric}/{faction}: the cached snapshot
// read path.
func (h *Handlers) HandleBoard(w http.ResponseWriter, r *http.Request) {
	metric := r.PathValue("metric")
	faction, ok := model.ParseFaction(r.PathValue("faction"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "unknown faction")
		return
	}

	board, err := h.db.GetBoard(r.Context(), metric, faction)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "no snapshot for this board")
			return
		}
		h.logger.Error("load board", "metric", metric, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to load board")
		return
	}
	writeJSON(w, r, http.StatusOK, board)
}

// HandleRecompute handles POST /v1/recompute: an on-demand cache rebuild.
// A rebuild already in flight is reported as skipped, not as an error.
func (h *Handlers) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.builder.Run(r.Context())
	if err != nil {
		if errors.Is(err, recompute.ErrAlreadyRunning) {
			writeJSON(w, r, http.StatusAccepted, model.RecomputeResult{Skipped: true})
			return
		}
		h.logger.Error("recompute", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "recompute failed")
		return
	}
	writeJSON(w, r, http.StatusOK, model.RecomputeResult{Pairs: pairs})
}

// CreateAPIKeyRequest is the body for POST /v1/apikeys.
type CreateAPIKeyRequest struct {
	Label     string  `json:"label"`
	Role      string  `json:"role"`
	AgentName *string `json:"agent_name,omitempty"`
}

// CreateAPIKeyResponse returns the raw key exactly once; only its hash is
// stored.
type CreateAPIKeyResponse struct {
	Key    string       `json:"key"`
	Record model.APIKey `json:"record"`
}

// HandleCreateAPIKey handles POST /v1/apikeys (admin only).
func (h *Handlers) HandleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	role := model.AgentRole(req.Role)
	if model.RoleRank(role) == 0 {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "role must be reader, agent, or admin")
		return
	}

	raw, err := newRawAPIKey()
	if err != nil {
		h.logger.Error("generate api key", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to create key")
		return
	}
	hash, err := auth.HashAPIKey(raw)
	if err != nil {
		h.logger.Error("hash api key", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to create key")
		return
	}

	rec, err := h.db.CreateAPIKey(r.Context(), model.APIKey{
		Prefix:    raw[:apiKeyPrefixLen],
		KeyHash:   hash,
		Label:     req.Label,
		Role:      role,
		AgentName: req.AgentName,
	})
	if err != nil {
		h.logger.Error("store api key", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to create key")
		return
	}
	writeJSON(w, r, http.StatusCreated, CreateAPIKeyResponse{Key: raw, Record: rec})
}

// HandleRevokeAPIKey handles DELETE /v1/apikeys/{id} (admin only). Revoking
// an already revoked or unknown key is a 404.
func (h *Handlers) HandleRevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid key id")
		return
	}
	if err := h.db.RevokeAPIKey(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "key not found")
			return
		}
		h.logger.Error("revoke api key", "id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to revoke key")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"revoked": id})
}

func rankQueryFromRequest(r *http.Request) rank.Query {
	q := rank.Query{Metric: r.URL.Query().Get("metric")}
	if q.Metric == "" {
		q.Metric = catalog.DefaultMetric
	}
	if v, ok := r.URL.Query()["scope"]; ok && len(v) > 0 {
		q.Scope = &v[0]
	}
	if v, ok := r.URL.Query()["window"]; ok && len(v) > 0 {
		q.Window = &v[0]
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.Limit = n
		}
	}
	return q
}
