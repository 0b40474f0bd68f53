package simulation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oddsmith/powerpick/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete prediction load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting powerpick simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("predictions", config.NumPredictions),
		logger.Int("ticketsPerPrediction", config.NumTickets),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate prediction requests
	requests, err := generateRequests(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("request generation failed: %w", err)
	}

	// Step 3: Submit requests concurrently
	if err := submitRequests(ctx, config, requests, stats); err != nil {
		return fmt.Errorf("request submission failed: %w", err)
	}

	// Step 4: Give the workers a head start before polling
	logger.Get().Info(ctx, "waiting for predictions to be processed")
	time.Sleep(ProcessingDelay)

	// Step 5: Poll results concurrently
	results, err := retrieveResults(ctx, config, requests, stats)
	if err != nil {
		return fmt.Errorf("result retrieval failed: %w", err)
	}

	// Step 6: Get the ticket board
	board, err := getTicketBoard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("ticket board retrieval failed: %w", err)
	}

	// Step 7: Verify results
	if err := verifyResults(ctx, config, results, board, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 8: Save requests to file
	if err := saveRequestsToFile(ctx, config, requests); err != nil {
		logger.Get().Warn(ctx, "failed to save requests to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveRequestsToFile saves the generated requests to a JSON file.
func saveRequestsToFile(ctx context.Context, config *Config, requests []Request) error {
	if len(requests) == 0 {
		return fmt.Errorf("no requests to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_requests_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write requests to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, request := range requests {
		jsonData, err := marshalJSON(request)
		if err != nil {
			return fmt.Errorf("failed to marshal request %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write request %d: %w", i, err)
		}

		// Add comma except for last request
		if i < len(requests)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "requests saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.RequestsSubmitted > 0 {
		successRate = float64(stats.RequestsSuccessful) / float64(stats.RequestsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.RequestsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("requestsGenerated", stats.RequestsGenerated),
		logger.Int("requestsSubmitted", stats.RequestsSubmitted),
		logger.Int("requestsSuccessful", stats.RequestsSuccessful),
		logger.Int("requestsDuplicate", stats.RequestsDuplicate),
		logger.Int("requestsRejected", stats.RequestsRejected),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Int("resultsRetrieved", stats.ResultsRetrieved),
		logger.Int("resultsPending", stats.ResultsPending),
		logger.Int("ticketsReceived", stats.TicketsReceived),
		logger.Int("boardEntries", stats.BoardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
