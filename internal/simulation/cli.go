package simulation

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/oddsmith/powerpick/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simulation_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`PowerPick Simulation Tool
=========================

A concurrent tool for load-testing the PowerPick prediction service.

Usage:
  go run cmd/simulate/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -predictions int
        Number of prediction requests to generate and submit (default 1000)
  -tickets int
        Number of tickets to request per prediction (default 3)
  -top int
        Number of top entries to fetch from the ticket board (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -poll duration
        Delay between result polls (default 500ms)
  -output string
        Output file for generated requests (default: generated_requests_TIMESTAMP.json)
  -log string
        Log file for test output (default: simulation_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/simulate/main.go

  # Test with custom parameters
  go run cmd/simulate/main.go -predictions 5000 -workers 16 -url http://localhost:8080

  # Test with verbose output
  go run cmd/simulate/main.go -verbose -predictions 1000

  # Test with custom log file
  go run cmd/simulate/main.go -predictions 5000 -log my_run.log
`)
}
