package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics
const (
	TopicSetScheduled     = "quiz.set.scheduled"
	TopicAttemptCompleted = "quiz.attempt.completed"
)

// SetScheduledEvent is emitted when an admin schedules or reschedules a set.
type SetScheduledEvent struct {
	EventID       string    `json:"event_id"`
	SetID         uint      `json:"set_id"`
	ScheduledDate string    `json:"scheduled_date"`
	CreatedBy     string    `json:"created_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewSetScheduledEvent(setID uint, scheduledDate, createdBy string) *SetScheduledEvent {
	return &SetScheduledEvent{
		EventID:       uuid.NewString(),
		SetID:         setID,
		ScheduledDate: scheduledDate,
		CreatedBy:     createdBy,
		OccurredAt:    time.Now().UTC(),
	}
}

// AttemptCompletedEvent is emitted exactly once per completed attempt, after
// the attempt record and ledger update have committed.
type AttemptCompletedEvent struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	SetID      uint      `json:"set_id"`
	FinalScore int       `json:"final_score"`
	TimeTaken  int       `json:"time_taken"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewAttemptCompletedEvent(userID string, setID uint, finalScore, timeTaken int) *AttemptCompletedEvent {
	return &AttemptCompletedEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		SetID:      setID,
		FinalScore: finalScore,
		TimeTaken:  timeTaken,
		OccurredAt: time.Now().UTC(),
	}
}
