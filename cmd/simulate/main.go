package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/oddsmith/powerpick/internal/simulation"
)

// Default configuration constants.
const (
	defaultNumPredictions = 1000
	defaultNumTickets     = 3
	defaultTopN           = 50
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultPollInterval   = 500 * time.Millisecond
	defaultPollAttempts   = 20
	defaultTestTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numPredictions = flag.Int("predictions", defaultNumPredictions, "Number of prediction requests to generate and submit")
		numTickets     = flag.Int("tickets", defaultNumTickets, "Number of tickets to request per prediction")
		topN           = flag.Int("top", defaultTopN, "Number of top entries to fetch from the ticket board")
		workers        = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		pollInterval   = flag.Duration("poll", defaultPollInterval, "Delay between result polls")
		outputFile     = flag.String("output", "", "Output file for generated requests (default: generated_requests_TIMESTAMP.json)")
		logFile        = flag.String("log", "", "Log file for test output (default: simulation_log_TIMESTAMP.log)")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulation.ShowHelp()
		return
	}

	// Setup logging
	if err := simulation.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &simulation.Config{
		BaseURL:        *baseURL,
		NumPredictions: *numPredictions,
		NumTickets:     *numTickets,
		TopN:           *topN,
		Workers:        *workers,
		Timeout:        *timeout,
		PollInterval:   *pollInterval,
		PollAttempts:   defaultPollAttempts,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	// Run the test
	if err := simulation.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
