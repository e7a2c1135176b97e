package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents different types of attempt lifecycle events
type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptCompleted EventType = "attempt.completed"
)

// AttemptEvent is the base event structure for all attempt events
type AttemptEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type AttemptStartedEvent struct {
	AttemptID string    `json:"attempt_id"`
	TestID    string    `json:"test_id"`
	TestTitle string    `json:"test_title"`
	UserID    string    `json:"user_id,omitempty"`
	StartedAt time.Time `json:"started_at"`
	TimeLimit int       `json:"time_limit"` // seconds
}

type AttemptCompletedEvent struct {
	AttemptID      string    `json:"attempt_id"`
	TestID         string    `json:"test_id"`
	TestTitle      string    `json:"test_title"`
	UserID         string    `json:"user_id,omitempty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Trigger        string    `json:"trigger"` // manual or timeout
	CompletedAt    time.Time `json:"completed_at"`
}

// GenerateEventID returns a unique id for a new event.
func GenerateEventID() string {
	return watermill.NewUUID()
}

// NewAttemptEvent wraps a payload in the event envelope.
func NewAttemptEvent(eventType EventType, data interface{}) *AttemptEvent {
	return &AttemptEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "examprep-service",
		Version:   "1.0",
		Data:      data,
	}
}
