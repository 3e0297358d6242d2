package models

import (
	"time"
)

// AttemptRecord is one completed play-through of one set by one user. The
// composite unique index is the storage-level guarantee that a (user, set)
// pair can never hold more than one record, even under concurrent submits.
type AttemptRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_attempt_user_set,priority:1"`
	SetID     uint      `json:"set_id" gorm:"not null;uniqueIndex:idx_attempt_user_set,priority:2"`
	DateOfSet time.Time `json:"date_of_set" gorm:"type:date;not null"`
	Score     int       `json:"score" gorm:"not null"`
	TimeTaken int       `json:"time_taken" gorm:"not null"` // seconds
	CreatedAt time.Time `json:"created_at"`

	User User        `json:"-" gorm:"foreignKey:UserID"`
	Set  QuestionSet `json:"-" gorm:"foreignKey:SetID"`
}

func (AttemptRecord) TableName() string {
	return "attempt_records"
}

// ScoreLedger accumulates a user's totals across completed attempts. It is
// mutated only inside the submit transaction and never decremented.
type ScoreLedger struct {
	UserID         string `json:"user_id" gorm:"primaryKey;size:255"`
	TotalScore     int    `json:"total_score" gorm:"not null;default:0"`
	TotalTimeTaken int    `json:"total_time_taken" gorm:"not null;default:0"`
	GamesPlayed    int    `json:"games_played" gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (ScoreLedger) TableName() string {
	return "score_ledgers"
}
