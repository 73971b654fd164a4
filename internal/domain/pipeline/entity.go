package pipeline

import "time"

// RecordID identifier assigned by the store
type RecordID int64

// Sentiment label derived from analysis text
type Sentiment string

const (
	SentimentOptimistic  Sentiment = "optimistic"
	SentimentPessimistic Sentiment = "pessimistic"
	SentimentBalanced    Sentiment = "balanced"
	SentimentUnknown     Sentiment = "unknown"
)

// Record is one persisted fetch/analyze/store cycle. Immutable once saved.
type Record struct {
	ID        RecordID  `json:"id"`
	Original  string    `json:"original"`
	Analysis  string    `json:"analysis"`
	Sentiment Sentiment `json:"sentiment"`
	Source    string    `json:"source"`
	Timestamp string    `json:"timestamp"` // ISO-8601 UTC
}

// Analysis hasil dari text-analysis client
type Analysis struct {
	Text      string
	Sentiment Sentiment
}

// Item is the per-iteration entry returned to the caller
type Item struct {
	Original  string    `json:"original"`
	Analysis  string    `json:"analysis"`
	Sentiment Sentiment `json:"sentiment"`
	Stored    bool      `json:"stored"`
	Timestamp string    `json:"timestamp"`
}

// Report aggregates one pipeline run
type Report struct {
	Items            []Item   `json:"items"`
	NotificationSent bool     `json:"notificationSent"`
	ProcessedAt      string   `json:"processedAt"`
	Errors           []string `json:"errors"`
}

// FormatTimestamp renders t as an ISO-8601 UTC string
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
