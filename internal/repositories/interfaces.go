package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/quizdash/quiz-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type SetFilters struct {
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	CreatedBy *string    `json:"created_by"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "scheduled_date", "created_at"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	UserID   *string    `json:"user_id"`
	SetID    *uint      `json:"set_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== DERIVED ROW STRUCTS =====

// LeaderboardRow is the raw aggregation of the attempt ledger per user,
// joined with user identity. Ordering is finalized by the service layer.
type LeaderboardRow struct {
	UserID      string    `json:"user_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Mobile      *string   `json:"mobile"`
	TotalScore  int       `json:"total_score"`
	TotalTime   int       `json:"total_time"`
	GamesPlayed int       `json:"games_played"`
	LastPlayed  time.Time `json:"last_played"`
}

// ===== REPOSITORY INTERFACES =====

// QuestionSetRepository persists scheduled question sets. Question rows are
// owned by their set: Create and Update always write the full question list
// atomically with the set row.
type QuestionSetRepository interface {
	Create(ctx context.Context, set *models.QuestionSet) error
	GetByID(ctx context.Context, id uint) (*models.QuestionSet, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.QuestionSet, error)
	List(ctx context.Context, filters SetFilters) ([]*models.QuestionSet, error)
	Update(ctx context.Context, set *models.QuestionSet, replaceQuestions bool) error
	Delete(ctx context.Context, id uint) error
}

// AttemptRepository persists completed attempts and per-user ledgers.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.AttemptRecord) error
	HasAttempt(ctx context.Context, userID string, setID uint) (bool, error)
	GetByUser(ctx context.Context, userID string, filters AttemptFilters) ([]*models.AttemptRecord, error)
	AttemptedSetIDs(ctx context.Context, userID string) (map[uint]bool, error)

	// LockLedger loads (creating if absent) the user's ledger row under a
	// row-level lock. Only meaningful inside a transaction.
	LockLedger(ctx context.Context, userID string) (*models.ScoreLedger, error)
	GetLedger(ctx context.Context, userID string) (*models.ScoreLedger, error)
	UpdateLedger(ctx context.Context, ledger *models.ScoreLedger) error

	Leaderboard(ctx context.Context) ([]*LeaderboardRow, error)
}

// UserRepository provides identity rows and registration statistics.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	RegistrationsBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// Repository aggregates all repositories behind a single access point.
type Repository interface {
	Sets() QuestionSetRepository
	Attempts() AttemptRepository
	Users() UserRepository
}

// TransactionRepository is implemented by repositories that can scope all
// operations to a database transaction.
type TransactionRepository interface {
	Repository
	Begin(ctx context.Context) (TransactionRepository, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ===== ERROR HELPERS =====

// IsNotFoundError reports whether err is a record-not-found condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique constraint violation.
// Requires the gorm error translator to be enabled on the connection.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
