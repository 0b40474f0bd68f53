// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
)

// TicketDependencies defines the interface for ranked ticket reads.
type TicketDependencies interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// TicketsHandler handles ranked ticket listing.
type TicketsHandler struct {
	deps     TicketDependencies
	maxLimit int
}

// NewTicketsHandler creates a new tickets handler.
func NewTicketsHandler(deps TicketDependencies, maxLimit int) *TicketsHandler {
	return &TicketsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetTickets handles GET /tickets?limit=N requests.
func (h *TicketsHandler) HandleGetTickets(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_tickets"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
