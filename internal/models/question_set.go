package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// A scheduled set always carries exactly QuestionsPerSet questions, each with
// exactly OptionsPerQuestion options. Both counts are enforced at create and
// update time; a set that violates either is rejected as a whole.
const (
	QuestionsPerSet    = 6
	OptionsPerQuestion = 4
)

type SetStatus string

const (
	SetUpcoming SetStatus = "Upcoming"
	SetActive   SetStatus = "Active"
	SetExpired  SetStatus = "Expired"
)

// QuestionSet is a bundle of questions scheduled for a single calendar date.
// Status and editability are never stored; they are recomputed from
// ScheduledDate against the current date on every read.
type QuestionSet struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ScheduledDate time.Time `json:"scheduled_date" gorm:"type:date;not null;index"`
	CreatedBy     string    `json:"created_by" gorm:"not null;size:255;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []Question `json:"questions" gorm:"foreignKey:SetID;constraint:OnDelete:CASCADE"`
	Creator   User       `json:"creator" gorm:"foreignKey:CreatedBy"`
}

func (QuestionSet) TableName() string {
	return "question_sets"
}

// StatusAt derives the lifecycle state from the scheduled date. Dates are
// compared by calendar day in now's location.
func (s *QuestionSet) StatusAt(now time.Time) SetStatus {
	today := DateOf(now)
	scheduled := DateOf(s.ScheduledDate.In(now.Location()))

	switch {
	case scheduled.After(today):
		return SetUpcoming
	case scheduled.Before(today):
		return SetExpired
	default:
		return SetActive
	}
}

// EditableAt reports whether the set may still be modified or deleted. A set
// becomes immutable once its scheduled date is in the past.
func (s *QuestionSet) EditableAt(now time.Time) bool {
	return s.StatusAt(now) != SetExpired
}

// PlayableAt reports whether a user without a completed attempt could play
// the set right now. Callers must combine this with the attempt ledger.
func (s *QuestionSet) PlayableAt(now time.Time, hasPlayed bool) bool {
	return s.StatusAt(now) == SetActive && !hasPlayed
}

// DateOf truncates a time to its calendar date, keeping the location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Question belongs to exactly one set. Options are stored as a JSON array of
// OptionsPerQuestion strings; CorrectAnswer always equals one of them.
type Question struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	SetID         uint           `json:"set_id" gorm:"not null;uniqueIndex:idx_set_position,priority:1"`
	Position      int            `json:"position" gorm:"not null;uniqueIndex:idx_set_position,priority:2"`
	Text          string         `json:"text" gorm:"not null;type:text"`
	Options       datatypes.JSON `json:"options" gorm:"type:jsonb;not null"`
	CorrectAnswer string         `json:"-" gorm:"not null;size:500"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the stored options array.
func (q *Question) OptionList() ([]string, error) {
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// EncodeOptions serializes an options slice for storage.
func EncodeOptions(options []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
