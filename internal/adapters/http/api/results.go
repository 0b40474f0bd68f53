// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/oddsmith/powerpick/internal/domain/model"
)

// ResultDependencies defines the interface for result lookups.
type ResultDependencies interface {
	GetResult(ctx context.Context, requestID string) (model.SelectionResult, error)
}

// ResultsHandler handles prediction result lookups.
type ResultsHandler struct {
	deps ResultDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleGetResult handles GET /predictions/{request_id} requests.
func (h *ResultsHandler) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_prediction"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /predictions/
	path := strings.TrimPrefix(r.URL.Path, "/predictions/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.GetResult(r.Context(), path)
	if err != nil {
		// A pending or unknown request id reads the same from outside.
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
