package services

import (
	"context"
	"time"

	"github.com/quizdash/quiz-service/internal/models"
)

// ===== REQUEST / RESPONSE DTOS =====

type QuestionRequest struct {
	Text          string   `json:"text" validate:"required,min=1,max=2000"`
	Options       []string `json:"options" validate:"option_count,dive,required,max=500"`
	CorrectAnswer string   `json:"correct_answer" validate:"required,max=500"`
}

type CreateSetRequest struct {
	ScheduledDate string            `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	Questions     []QuestionRequest `json:"questions" validate:"question_count,dive"`
}

type UpdateSetRequest struct {
	ScheduledDate *string           `json:"scheduled_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Questions     []QuestionRequest `json:"questions,omitempty" validate:"omitempty,question_count,dive"`
}

type SubmitAnswerRequest struct {
	SetID          uint   `json:"set_id" validate:"required"`
	Index          *int   `json:"index" validate:"required,min=0,max=5"`
	SelectedAnswer string `json:"selected_answer" validate:"required,max=500"`
	TimeTaken      int    `json:"time_taken" validate:"min=0"`
}

// SubmitAnswerResponse reports the outcome of one answer submission. When
// Completed is false the session simply advances; when true the attempt has
// been recorded and TotalScore holds the user's cumulative ledger score.
type SubmitAnswerResponse struct {
	Completed  bool   `json:"completed"`
	Success    bool   `json:"success"`
	NextIndex  *int   `json:"next_index,omitempty"`
	TotalScore *int   `json:"total_score,omitempty"`
	Message    string `json:"message"`
}

type FetchQuestionResponse struct {
	SetID          uint     `json:"set_id"`
	Index          int      `json:"index"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	TotalQuestions int      `json:"total_questions"`
}

// SetSummary is a question set as presented to players, with the derived
// lifecycle fields resolved against the current date and the caller's
// attempt history.
type SetSummary struct {
	ID            uint             `json:"id"`
	ScheduledDate string           `json:"scheduled_date"`
	Status        models.SetStatus `json:"status"`
	Playable      bool             `json:"playable"`
	HasPlayed     bool             `json:"has_played"`
	QuestionCount int              `json:"question_count"`
}

type SetDetail struct {
	ID            uint              `json:"id"`
	ScheduledDate string            `json:"scheduled_date"`
	Status        models.SetStatus  `json:"status"`
	Editable      bool              `json:"editable"`
	CreatedBy     string            `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	Questions     []QuestionWithKey `json:"questions"`
}

// QuestionWithKey includes the correct answer. Admin surface only.
type QuestionWithKey struct {
	Position      int      `json:"position"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"user_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Mobile      *string   `json:"mobile,omitempty"`
	TotalScore  int       `json:"total_score"`
	TotalTime   int       `json:"total_time"`
	GamesPlayed int       `json:"games_played"`
	LastPlayed  time.Time `json:"last_played"`
}

// AttemptSummary is one completed attempt as shown in a user's history.
type AttemptSummary struct {
	SetID     uint      `json:"set_id"`
	DateOfSet string    `json:"date_of_set"`
	Score     int       `json:"score"`
	TimeTaken int       `json:"time_taken"`
	PlayedAt  time.Time `json:"played_at"`
}

// ActivityPoint is one bucket of the registration activity series.
type ActivityPoint struct {
	Label      string `json:"label"`
	NewUsers   int    `json:"new_users"`
	TotalUsers int    `json:"total_users"`
}

type ActivityRequest struct {
	Window string `json:"window" validate:"required,activity_window"`
}

// ===== SERVICE INTERFACES =====

// SessionService runs the question-by-question quiz flow.
type SessionService interface {
	FetchQuestion(ctx context.Context, userID string, setID uint, index int) (*FetchQuestionResponse, error)
	SubmitAnswer(ctx context.Context, userID string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error)
	ListSets(ctx context.Context, userID string) ([]*SetSummary, error)
	AttemptHistory(ctx context.Context, userID string) ([]*AttemptSummary, error)
}

// SetService manages the question set catalog for admins.
type SetService interface {
	CreateSet(ctx context.Context, adminID string, req *CreateSetRequest) (*SetDetail, error)
	GetSet(ctx context.Context, id uint) (*SetDetail, error)
	ListSets(ctx context.Context, from, to *time.Time) ([]*SetDetail, error)
	UpdateSet(ctx context.Context, adminID string, id uint, req *UpdateSetRequest) (*SetDetail, error)
	DeleteSet(ctx context.Context, adminID string, id uint) error
}

// LeaderboardService serves the ranked standings.
type LeaderboardService interface {
	Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error)
	Invalidate(ctx context.Context) error
}

// ActivityService serves user registration statistics.
type ActivityService interface {
	Activity(ctx context.Context, window string) ([]*ActivityPoint, error)
	TotalUsers(ctx context.Context) (int64, error)
}

// ExportService renders admin reports.
type ExportService interface {
	LeaderboardXLSX(ctx context.Context) ([]byte, error)
}
