package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventAddDoc     EventType = "add_document"
	EventRemoveDoc  EventType = "remove_document"
)

// SearchEvent describes one executed query.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Policy    string    `json:"policy"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// DocumentEvent describes an index mutation.
type DocumentEvent struct {
	Type       EventType `json:"type"`
	DocumentID int       `json:"document_id"`
	Status     string    `json:"status,omitempty"`
	WordCount  int       `json:"word_count,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
