// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/oddsmith/powerpick/internal/domain/dedupe"
	"github.com/oddsmith/powerpick/internal/domain/model"
)

// PredictionDependencies defines the interface for prediction submission.
type PredictionDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, job model.PredictionJob) bool
}

// PredictionsHandler handles prediction submissions.
type PredictionsHandler struct {
	deps PredictionDependencies
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps PredictionDependencies) *PredictionsHandler {
	return &PredictionsHandler{deps: deps}
}

// predictionRequest mirrors the OpenAPI schema for POST /predictions.
type predictionRequest struct {
	RequestID      string    `json:"request_id"`
	WhiteProbs     []float64 `json:"white_probs"`
	PowerballProbs []float64 `json:"powerball_probs"`
	NumTickets     int       `json:"num_tickets"`
	PoolSize       int       `json:"pool_size"`
}

func (p predictionRequest) vector() (model.ProbabilityVector, error) {
	var v model.ProbabilityVector
	if len(p.WhiteProbs) != model.WhiteBallMax {
		return v, fmt.Errorf("white_probs must have %d entries, got %d",
			model.WhiteBallMax, len(p.WhiteProbs))
	}
	if len(p.PowerballProbs) != model.PowerballMax {
		return v, fmt.Errorf("powerball_probs must have %d entries, got %d",
			model.PowerballMax, len(p.PowerballProbs))
	}
	copy(v.WhiteBalls[:], p.WhiteProbs)
	copy(v.Powerball[:], p.PowerballProbs)
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}

func (p predictionRequest) validate() error {
	if p.NumTickets < 0 {
		return fmt.Errorf("num_tickets must not be negative")
	}
	if p.PoolSize < 0 {
		return fmt.Errorf("pool_size must not be negative")
	}
	return nil
}

// HandlePostPrediction handles POST /predictions requests.
func (h *PredictionsHandler) HandlePostPrediction(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_prediction"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req predictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	vector, err := req.vector()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), requestID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", RequestID: requestID, Duplicate: true})
		return
	}

	job := model.PredictionJob{
		RequestID:  requestID,
		Vector:     vector,
		NumTickets: req.NumTickets,
		PoolSize:   req.PoolSize,
	}

	// Try to enqueue for async processing
	if ok := h.deps.Enqueue(r.Context(), job); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), requestID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RequestID: requestID, Duplicate: false})
}
