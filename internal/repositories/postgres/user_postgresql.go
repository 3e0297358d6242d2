package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

// Upsert provisions or refreshes the local identity row for an authenticated
// user. CreatedAt of an existing row is left untouched so registration
// statistics stay stable.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "mobile", "age", "role", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *userRepository) CountCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("created_at < ?", cutoff).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count users before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return count, nil
}

func (r *userRepository) RegistrationsBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var timestamps []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Pluck("created_at", &timestamps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}
	return timestamps, nil
}
