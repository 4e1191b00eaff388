package server

import (
	"net/http"
	"strings"

	"github.com/primeboard/primeboard/internal/model"
)

// HandleSubmit handles POST /v1/submissions: parses a pasted export and
// upserts one submission per recovered stat line. Bad lines are reported per
// line; the batch never fails as a whole.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "text is required")
		return
	}
	if len(req.Text) > model.MaxSubmissionBodyLen {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "text exceeds maximum size")
		return
	}

	result, err := h.ingestSvc.Ingest(r.Context(), req.Text, req.AudienceScope)
	if err != nil {
		h.logger.Error("submission ingest", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to store submission")
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
