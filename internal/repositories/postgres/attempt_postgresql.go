package postgres

import (
	"context"
	"fmt"

	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) repositories.AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.AttemptRecord) error {
	// The idx_attempt_user_set unique index makes a second insert for the
	// same (user, set) fail with gorm.ErrDuplicatedKey. That error is the
	// caller's signal that another submit won the race.
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepository) HasAttempt(ctx context.Context, userID string, setID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AttemptRecord{}).
		Where("user_id = ? AND set_id = ?", userID, setID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check attempt: %w", err)
	}
	return count > 0, nil
}

func (r *attemptRepository) GetByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.AttemptRecord, error) {
	var attempts []*models.AttemptRecord

	query := r.db.WithContext(ctx).
		Model(&models.AttemptRecord{}).
		Where("user_id = ?", userID)

	if filters.SetID != nil {
		query = query.Where("set_id = ?", *filters.SetID)
	}
	if filters.DateFrom != nil {
		query = query.Where("date_of_set >= ?", models.DateOf(*filters.DateFrom))
	}
	if filters.DateTo != nil {
		query = query.Where("date_of_set <= ?", models.DateOf(*filters.DateTo))
	}

	query = query.Order("date_of_set DESC, id DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

func (r *attemptRepository) AttemptedSetIDs(ctx context.Context, userID string) (map[uint]bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.AttemptRecord{}).
		Where("user_id = ?", userID).
		Pluck("set_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load attempted set ids: %w", err)
	}

	attempted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		attempted[id] = true
	}
	return attempted, nil
}

// LockLedger fetches the user's ledger row FOR UPDATE, inserting an empty row
// first if the user has never played. Serializes concurrent submits per user.
func (r *attemptRepository) LockLedger(ctx context.Context, userID string) (*models.ScoreLedger, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ScoreLedger{UserID: userID}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure ledger row: %w", err)
	}

	var ledger models.ScoreLedger
	err = r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&ledger).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger: %w", err)
	}
	return &ledger, nil
}

func (r *attemptRepository) GetLedger(ctx context.Context, userID string) (*models.ScoreLedger, error) {
	var ledger models.ScoreLedger
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&ledger).Error
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *attemptRepository) UpdateLedger(ctx context.Context, ledger *models.ScoreLedger) error {
	if err := r.db.WithContext(ctx).Save(ledger).Error; err != nil {
		return fmt.Errorf("failed to update ledger: %w", err)
	}
	return nil
}

// Leaderboard aggregates every user's attempts in one query. The ORDER BY is
// a convenience for debugging; the service re-sorts with the authoritative
// tie-break rules before serving.
func (r *attemptRepository) Leaderboard(ctx context.Context) ([]*repositories.LeaderboardRow, error) {
	var rows []*repositories.LeaderboardRow

	err := r.db.WithContext(ctx).
		Table("attempt_records").
		Select(`attempt_records.user_id,
			users.full_name,
			users.email,
			users.mobile,
			SUM(attempt_records.score) AS total_score,
			SUM(attempt_records.time_taken) AS total_time,
			COUNT(*) AS games_played,
			MAX(attempt_records.created_at) AS last_played`).
		Joins("JOIN users ON users.id = attempt_records.user_id").
		Group("attempt_records.user_id, users.full_name, users.email, users.mobile").
		Order("total_score DESC, total_time ASC, user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leaderboard: %w", err)
	}
	return rows, nil
}
