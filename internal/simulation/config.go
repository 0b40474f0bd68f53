package simulation

import "time"

// Config holds configuration for the prediction load test
type Config struct {
	BaseURL        string        // Base URL of the service
	NumPredictions int           // Number of prediction requests to generate
	NumTickets     int           // Tickets requested per prediction
	TopN           int           // Number of top ticket entries to fetch
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	PollInterval   time.Duration // Delay between result polls
	PollAttempts   int           // Max polls per prediction before giving up
	OutputFile     string        // Output file for generated requests
	LogFile        string        // Log file for test output
	Verbose        bool          // Enable verbose logging
}

// Request represents a prediction request to be submitted
type Request struct {
	RequestID      string    `json:"request_id"`
	WhiteProbs     []float64 `json:"white_probs"`
	PowerballProbs []float64 `json:"powerball_probs"`
	NumTickets     int       `json:"num_tickets"`
	PoolSize       int       `json:"pool_size,omitempty"`
}

// AckResponse represents the response from prediction submission
type AckResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

// Breakdown mirrors the per-criterion scores attached to a ticket
type Breakdown struct {
	Probability  float64 `json:"probability"`
	Diversity    float64 `json:"diversity"`
	Historical   float64 `json:"historical"`
	RiskAdjusted float64 `json:"risk_adjusted"`
	Total        float64 `json:"total"`
}

// Ticket represents a scored ticket inside a prediction result
type Ticket struct {
	WhiteBalls []int     `json:"white_balls"`
	Powerball  int       `json:"powerball"`
	Scores     Breakdown `json:"scores"`
}

// Result represents a completed prediction result
type Result struct {
	RequestID           string   `json:"request_id"`
	Tickets             []Ticket `json:"tickets"`
	CandidatesEvaluated int      `json:"candidates_evaluated"`
	DatasetFingerprint  string   `json:"dataset_fingerprint"`
	Shortfall           int      `json:"shortfall"`
}

// Entry represents a ranked ticket from the ticket board
type Entry struct {
	Rank       int       `json:"rank"`
	Key        string    `json:"key"`
	WhiteBalls []int     `json:"white_balls"`
	Powerball  int       `json:"powerball"`
	Score      float64   `json:"score"`
	Breakdown  Breakdown `json:"breakdown"`
	RequestID  string    `json:"request_id"`
}

// Stats holds test statistics
type Stats struct {
	RequestsGenerated  int
	RequestsSubmitted  int
	RequestsSuccessful int
	RequestsDuplicate  int
	RequestsRejected   int
	RequestsFailed     int
	ResultsRetrieved   int
	ResultsPending     int
	TicketsReceived    int
	BoardEntries       int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
