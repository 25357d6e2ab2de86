package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the result-pipeline events this service emits
type EventType string

const (
	// Result events
	EventResultSubmitted EventType = "result.submitted"

	// Test lifecycle events
	EventTestDeleted EventType = "test.deleted"
)

// ResultEvent is the envelope for every event published to the result topic
type ResultEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

// ResultSubmittedEvent is published after a graded result is persisted.
// Downstream consumers (email, analytics) react to it; the submission path
// never waits on them.
type ResultSubmittedEvent struct {
	ResultID    uint      `json:"result_id"`
	TestID      uint      `json:"test_id"`
	StudentID   uint      `json:"student_id"`
	Score       float64   `json:"score"`
	TotalMarks  float64   `json:"total_marks"`
	Percentage  float64   `json:"percentage"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TestDeletedEvent is published when a test and its results are hard-deleted,
// so consumers holding derived data (cached leaderboards, exports) can drop it.
type TestDeletedEvent struct {
	TestID         uint `json:"test_id"`
	ResultsDeleted bool `json:"results_deleted"`
}

// NewResultEvent wraps a payload in the standard envelope
func NewResultEvent(eventType EventType, data interface{}) *ResultEvent {
	return &ResultEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    "exam-service",
		Version:   "1.0",
		Data:      data,
	}
}
