package simulation

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveResults polls prediction results for all submitted requests
// concurrently. A request whose result never materializes within the
// configured poll budget is counted as pending, not failed.
func retrieveResults(ctx context.Context, config *Config, requests []Request, stats *Stats) ([]Result, error) {
	log.Printf("Retrieving results for %d predictions with %d workers...", len(requests), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage indexed by request position
	results := make([]Result, len(requests))
	var (
		retrieved int64
		pending   int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					requestID := requests[index].RequestID
					result, err := pollSingleResult(ctx, client, config, requestID)

					if err != nil {
						atomic.AddInt64(&pending, 1)
						if config.Verbose {
							log.Printf("No result for %s: %v", requestID, err)
						}
					} else {
						results[index] = result
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&pending)
						ret := atomic.LoadInt64(&retrieved)
						pend := atomic.LoadInt64(&pending)

						log.Printf("Result progress: %d/%d checked (retrieved: %d, pending: %d)",
							total, len(requests), ret, pend)
					}
				}
			}
		}()
	}

	// Send request indices to workers
	go func() {
		defer close(indexChan)
		for i := range requests {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Filter out empty results (pending retrievals)
	validResults := make([]Result, 0, len(results))
	ticketCount := 0
	for _, result := range results {
		if result.RequestID != "" { // Empty RequestID indicates a pending result
			validResults = append(validResults, result)
			ticketCount += len(result.Tickets)
		}
	}

	// Update stats
	stats.ResultsRetrieved = len(validResults)
	stats.ResultsPending = int(atomic.LoadInt64(&pending))
	stats.TicketsReceived = ticketCount

	log.Printf(`Result retrieval completed:
   Retrieved: %d
   Pending: %d
   Tickets: %d
`, len(validResults), stats.ResultsPending, ticketCount)

	return validResults, nil
}

// pollSingleResult polls the result endpoint for one request until the
// result appears or the poll budget runs out.
func pollSingleResult(ctx context.Context, client *HTTPClient, config *Config, requestID string) (Result, error) {
	resultURL := config.BaseURL + "/predictions/" + url.PathEscape(requestID)

	var lastErr error
	for attempt := 0; attempt < config.PollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(config.PollInterval):
			}
		}

		resp, err := client.Get(ctx, resultURL)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := readResponseBody(resp)
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode != StatusOK {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
			continue
		}

		var result Result
		if err := unmarshalJSON(body, &result); err != nil {
			return Result{}, fmt.Errorf("failed to parse response: %w", err)
		}
		return result, nil
	}

	return Result{}, fmt.Errorf("no result after %d polls: %w", config.PollAttempts, lastErr)
}

// getTicketBoard retrieves the top N entries from the ticket board.
func getTicketBoard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	log.Printf("Getting top %d ticket board entries...", config.TopN)

	client := newHTTPClient(config.Timeout)
	boardURL := fmt.Sprintf("%s/tickets?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var board []Entry
	if err := unmarshalJSON(body, &board); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.BoardEntries = len(board)
	log.Printf("Retrieved %d ticket board entries", len(board))

	return board, nil
}

// getRankEntry retrieves a single ticket's rank by its canonical key.
func getRankEntry(ctx context.Context, client *HTTPClient, baseURL, key string) (Entry, error) {
	rankURL := baseURL + "/tickets/rank/" + url.PathEscape(key)

	resp, err := client.Get(ctx, rankURL)
	if err != nil {
		return Entry{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return Entry{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var entry Entry
	if err := unmarshalJSON(body, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return entry, nil
}
