package postgres

import (
	"context"
	"fmt"

	"github.com/quizdash/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm-backed implementation of the repository aggregate.
type Repository struct {
	db       *gorm.DB
	sets     repositories.QuestionSetRepository
	attempts repositories.AttemptRepository
	users    repositories.UserRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		sets:     NewQuestionSetRepository(db),
		attempts: NewAttemptRepository(db),
		users:    NewUserRepository(db),
	}
}

func (r *Repository) Sets() repositories.QuestionSetRepository {
	return r.sets
}

func (r *Repository) Attempts() repositories.AttemptRepository {
	return r.attempts
}

func (r *Repository) Users() repositories.UserRepository {
	return r.users
}

// Begin opens a transaction and returns a repository scoped to it. The
// returned value must be finished with Commit or Rollback.
func (r *Repository) Begin(ctx context.Context) (repositories.TransactionRepository, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return NewRepository(tx), nil
}

func (r *Repository) Commit(ctx context.Context) error {
	if err := r.db.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) Rollback(ctx context.Context) error {
	if err := r.db.Rollback().Error; err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
