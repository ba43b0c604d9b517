// Package events publishes session domain events to a message broker.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultSource  = "flashquiz-service"
	DefaultVersion = "1.0"
	DefaultTopic   = "flashquiz.events"
)

// Event types
const (
	SessionStarted  = "session.started"
	SessionAnswered = "session.answered"
	SessionFinished = "session.finished"
	StatsCleaned    = "stats.cleaned"
)

// Event is the envelope written to the broker.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    DefaultSource,
		Version:   DefaultVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher delivers events. Implementations must be safe for concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// ===== PAYLOADS =====

type SessionStartedData struct {
	SessionID string `json:"session_id"`
	Document  string `json:"document"`
	Username  string `json:"username"`
	Mode      string `json:"mode"`
}

type SessionAnsweredData struct {
	SessionID     string  `json:"session_id"`
	Username      string  `json:"username"`
	QuestionIndex int     `json:"question_index"`
	IsCorrect     bool    `json:"is_correct"`
	Accuracy      float64 `json:"accuracy"`
}

type SessionFinishedData struct {
	SessionID    string  `json:"session_id"`
	Document     string  `json:"document"`
	Username     string  `json:"username"`
	ScorePercent float64 `json:"score_percent"`
	LetterGrade  string  `json:"letter_grade"`
	Correct      int     `json:"correct"`
	Total        int     `json:"total"`
}

type StatsCleanedData struct {
	Document   string `json:"document"`
	MaxAgeDays int    `json:"max_age_days"`
	Removed    int    `json:"removed"`
	Kept       int    `json:"kept"`
}
