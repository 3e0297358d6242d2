package postgres

import (
	"context"
	"fmt"

	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type questionSetRepository struct {
	db *gorm.DB
}

func NewQuestionSetRepository(db *gorm.DB) repositories.QuestionSetRepository {
	return &questionSetRepository{db: db}
}

func (r *questionSetRepository) Create(ctx context.Context, set *models.QuestionSet) error {
	// Questions are created through the association in the same insert, so a
	// partial set can never land.
	if err := r.db.WithContext(ctx).Create(set).Error; err != nil {
		return fmt.Errorf("failed to create question set: %w", err)
	}
	return nil
}

func (r *questionSetRepository) GetByID(ctx context.Context, id uint) (*models.QuestionSet, error) {
	var set models.QuestionSet
	if err := r.db.WithContext(ctx).First(&set, id).Error; err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *questionSetRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.QuestionSet, error) {
	var set models.QuestionSet
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&set, id).Error
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *questionSetRepository) List(ctx context.Context, filters repositories.SetFilters) ([]*models.QuestionSet, error) {
	var sets []*models.QuestionSet

	query := r.db.WithContext(ctx).Model(&models.QuestionSet{})

	if filters.DateFrom != nil {
		query = query.Where("scheduled_date >= ?", models.DateOf(*filters.DateFrom))
	}
	if filters.DateTo != nil {
		query = query.Where("scheduled_date <= ?", models.DateOf(*filters.DateTo))
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "scheduled_date"
	}
	sortOrder := filters.SortOrder
	if sortOrder == "" {
		sortOrder = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&sets).Error; err != nil {
		return nil, fmt.Errorf("failed to list question sets: %w", err)
	}
	return sets, nil
}

// Update saves the set row. When replaceQuestions is set, the existing
// question rows are deleted and the new list inserted in the same
// transaction, so readers never observe a half-replaced set.
func (r *questionSetRepository) Update(ctx context.Context, set *models.QuestionSet, replaceQuestions bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions", "Creator").Save(set).Error; err != nil {
			return fmt.Errorf("failed to update question set: %w", err)
		}
		if !replaceQuestions {
			return nil
		}
		if err := tx.Where("set_id = ?", set.ID).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to clear questions: %w", err)
		}
		for i := range set.Questions {
			set.Questions[i].ID = 0
			set.Questions[i].SetID = set.ID
		}
		if err := tx.Create(&set.Questions).Error; err != nil {
			return fmt.Errorf("failed to insert questions: %w", err)
		}
		return nil
	})
}

func (r *questionSetRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("set_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		result := tx.Delete(&models.QuestionSet{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete question set: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
