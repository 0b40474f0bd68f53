package simulation

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/oddsmith/powerpick/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	shapeTypeDivisor   = 5
)

// Constants for probability vector shapes.
const (
	caseUniform    = 0
	caseHotNumbers = 1
	casePeaked     = 2
	caseBimodal    = 3
	caseNoisy      = 4
)

// Constants for shape parameters.
const (
	hotNumberBoost   = 4.0
	hotNumberCount   = 8
	peakedDecay      = 0.92
	bimodalLowBoost  = 3.0
	bimodalHighBoost = 3.0
	bimodalBandWidth = 10
	noiseFloor       = 0.2
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max) using crypto/rand.
func getRandomInt(max int64) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return int(n.Int64())
}

// generateRequests creates the specified number of prediction requests
// with unique request IDs and varied probability vector shapes.
func generateRequests(ctx context.Context, config *Config, stats *Stats) ([]Request, error) {
	logger.Get().Info(ctx, "generating prediction requests", logger.Int("numPredictions", config.NumPredictions))

	requests := make([]Request, config.NumPredictions)

	// Pre-allocate request IDs to ensure uniqueness
	requestIDs := make([]string, config.NumPredictions)
	for i := 0; i < config.NumPredictions; i++ {
		requestIDs[i] = uuid.New().String()
	}

	// Generate requests concurrently
	type genResult struct {
		index   int
		request Request
		err     error
	}

	resultChan := make(chan genResult, config.NumPredictions)

	// Use worker pool for request generation
	workerCount := minInt(config.Workers, config.NumPredictions)
	requestsPerWorker := config.NumPredictions / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * requestsPerWorker
		end := start + requestsPerWorker
		if worker == workerCount-1 {
			end = config.NumPredictions // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- genResult{index: i, err: ctx.Err()}
					return
				default:
					req := generateSingleRequest(requestIDs[i], config.NumTickets)
					resultChan <- genResult{index: i, request: req, err: nil}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumPredictions; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during request generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate request %d: %w", result.index, result.err)
			}
			requests[result.index] = result.request
		}
	}

	stats.RequestsGenerated = len(requests)
	logger.Get().Info(ctx, "generated requests successfully", logger.Int("count", len(requests)))

	return requests, nil
}

// generateSingleRequest creates a single prediction request with a
// randomly shaped probability vector pair.
func generateSingleRequest(requestID string, numTickets int) Request {
	return Request{
		RequestID:      requestID,
		WhiteProbs:     generateShapedVector(WhiteProbLen),
		PowerballProbs: generateShapedVector(PowerballProbLen),
		NumTickets:     numTickets,
	}
}

// generateShapedVector creates a normalized probability vector with one
// of several distribution shapes, so the service sees a realistic mix
// of flat, skewed and concentrated inputs.
func generateShapedVector(length int) []float64 {
	weights := make([]float64, length)

	switch getRandomInt(shapeTypeDivisor) {
	case caseUniform:
		// Flat weights - every number equally likely
		for i := range weights {
			weights[i] = 1.0
		}
	case caseHotNumbers:
		// A handful of "hot" numbers carry extra weight
		for i := range weights {
			weights[i] = 1.0
		}
		for j := 0; j < hotNumberCount; j++ {
			weights[getRandomInt(int64(length))] += hotNumberBoost
		}
	case casePeaked:
		// Weight decays geometrically from a random peak
		peak := getRandomInt(int64(length))
		for i := range weights {
			dist := i - peak
			if dist < 0 {
				dist = -dist
			}
			w := 1.0
			for d := 0; d < dist; d++ {
				w *= peakedDecay
			}
			weights[i] = w
		}
	case caseBimodal:
		// Low and high bands boosted, middle flat
		for i := range weights {
			weights[i] = 1.0
			if i < bimodalBandWidth {
				weights[i] += bimodalLowBoost
			}
			if i >= length-bimodalBandWidth {
				weights[i] += bimodalHighBoost
			}
		}
	case caseNoisy:
		// Independent random weights above a floor
		for i := range weights {
			weights[i] = noiseFloor + getRandomFloat()
		}
	}

	return normalize(weights)
}

// normalize scales weights so they sum to 1.0.
func normalize(weights []float64) []float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		uniform := 1.0 / float64(len(weights))
		for i := range weights {
			weights[i] = uniform
		}
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// minInt returns the smaller of two ints.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
