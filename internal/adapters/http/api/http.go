// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oddsmith/powerpick/internal/adapters/repository"
	"github.com/oddsmith/powerpick/internal/domain/dedupe"
	"github.com/oddsmith/powerpick/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a prediction job for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, job model.PredictionJob) bool

	// GetResult returns a completed prediction by request id.
	GetResult(ctx context.Context, requestID string) (model.SelectionResult, error)

	// Read operations expose ranked ticket data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, key string) (Entry, error)
}

// Entry mirrors the read shape returned by ticket queries.
type Entry = repository.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	predictionsHandler *PredictionsHandler
	resultsHandler     *ResultsHandler
	ticketsHandler     *TicketsHandler
	rankHandler        *RankHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxTicketLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		predictionsHandler: NewPredictionsHandler(deps),
		resultsHandler:     NewResultsHandler(deps),
		ticketsHandler:     NewTicketsHandler(deps, maxTicketLimit),
		rankHandler:        NewRankHandler(deps),
		dashboardHandler:   newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predictions", MetricsMiddleware(s.predictionsHandler.HandlePostPrediction, "predictions"))
	mux.HandleFunc("/predictions/", MetricsMiddleware(s.resultsHandler.HandleGetResult, "prediction_result"))
	mux.HandleFunc("/tickets", MetricsMiddleware(s.ticketsHandler.HandleGetTickets, "tickets"))
	mux.HandleFunc("/tickets/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "ticket_rank"))
}

type ackResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrTicketNotFound) ||
		errors.Is(err, repository.ErrResultNotFound)
}
