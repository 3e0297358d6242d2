package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quizdash/quiz-service/internal/events"
	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/repositories"
	"github.com/quizdash/quiz-service/internal/utils"
	"github.com/quizdash/quiz-service/internal/validator"
)

type setService struct {
	repo      repositories.Repository
	validator *validator.Validator
	events    events.EventPublisher
	logger    utils.Logger
	now       func() time.Time
}

func NewSetService(
	repo repositories.Repository,
	v *validator.Validator,
	publisher events.EventPublisher,
	logger utils.Logger,
) SetService {
	return &setService{
		repo:      repo,
		validator: v,
		events:    publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *setService) CreateSet(ctx context.Context, adminID string, req *CreateSetRequest) (*SetDetail, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if errs := validator.ValidateQuestions(toQuestionInputs(req.Questions)); len(errs) > 0 {
		return nil, errs
	}

	scheduled, errs := validator.ValidateScheduledDate(req.ScheduledDate)
	if len(errs) > 0 {
		return nil, errs
	}

	if err := s.ensureDateFree(ctx, scheduled, 0); err != nil {
		return nil, err
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	set := &models.QuestionSet{
		ScheduledDate: models.DateOf(scheduled),
		CreatedBy:     adminID,
		Questions:     questions,
	}
	if err := s.repo.Sets().Create(ctx, set); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "question set created",
		"set_id", set.ID, "scheduled_date", req.ScheduledDate, "created_by", adminID)
	s.publishScheduled(ctx, set)

	return s.toDetail(set)
}

func (s *setService) GetSet(ctx context.Context, id uint) (*SetDetail, error) {
	set, err := s.repo.Sets().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	return s.toDetail(set)
}

func (s *setService) ListSets(ctx context.Context, from, to *time.Time) ([]*SetDetail, error) {
	sets, err := s.repo.Sets().List(ctx, repositories.SetFilters{DateFrom: from, DateTo: to})
	if err != nil {
		return nil, err
	}

	details := make([]*SetDetail, 0, len(sets))
	for _, set := range sets {
		// List skips question bodies; detail views load them on demand
		now := s.now()
		details = append(details, &SetDetail{
			ID:            set.ID,
			ScheduledDate: set.ScheduledDate.Format("2006-01-02"),
			Status:        set.StatusAt(now),
			Editable:      set.EditableAt(now),
			CreatedBy:     set.CreatedBy,
			CreatedAt:     set.CreatedAt,
		})
	}
	return details, nil
}

// UpdateSet replaces the schedule date and/or the full question list. An
// expired set is immutable; its attempt records reference it forever.
func (s *setService) UpdateSet(ctx context.Context, adminID string, id uint, req *UpdateSetRequest) (*SetDetail, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	set, err := s.repo.Sets().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}

	if !set.EditableAt(s.now()) {
		return nil, ErrSetNotEditable
	}

	if req.ScheduledDate != nil {
		scheduled, errs := validator.ValidateScheduledDate(*req.ScheduledDate)
		if len(errs) > 0 {
			return nil, errs
		}
		if err := s.ensureDateFree(ctx, scheduled, set.ID); err != nil {
			return nil, err
		}
		set.ScheduledDate = models.DateOf(scheduled)
	}

	replaceQuestions := false
	if req.Questions != nil {
		if errs := validator.ValidateQuestions(toQuestionInputs(req.Questions)); len(errs) > 0 {
			return nil, errs
		}
		questions, err := buildQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		set.Questions = questions
		replaceQuestions = true
	}

	if err := s.repo.Sets().Update(ctx, set, replaceQuestions); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "question set updated", "set_id", set.ID, "updated_by", adminID)
	if req.ScheduledDate != nil {
		s.publishScheduled(ctx, set)
	}

	return s.GetSet(ctx, set.ID)
}

func (s *setService) DeleteSet(ctx context.Context, adminID string, id uint) error {
	set, err := s.repo.Sets().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSetNotFound
		}
		return err
	}

	if !set.EditableAt(s.now()) {
		return ErrSetNotEditable
	}

	if err := s.repo.Sets().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSetNotFound
		}
		return err
	}

	s.logger.InfoContext(ctx, "question set deleted", "set_id", id, "deleted_by", adminID)
	return nil
}

// ensureDateFree enforces at most one set per calendar date. excludeID skips
// the set being rescheduled onto its own date.
func (s *setService) ensureDateFree(ctx context.Context, date time.Time, excludeID uint) error {
	day := models.DateOf(date)
	existing, err := s.repo.Sets().List(ctx, repositories.SetFilters{DateFrom: &day, DateTo: &day})
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != excludeID {
			return ErrDateTaken
		}
	}
	return nil
}

func (s *setService) publishScheduled(ctx context.Context, set *models.QuestionSet) {
	event := events.NewSetScheduledEvent(set.ID, set.ScheduledDate.Format("2006-01-02"), set.CreatedBy)
	if err := s.events.Publish(ctx, events.TopicSetScheduled, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish set scheduled event",
			"set_id", set.ID, "error", err)
	}
}

func (s *setService) toDetail(set *models.QuestionSet) (*SetDetail, error) {
	now := s.now()
	detail := &SetDetail{
		ID:            set.ID,
		ScheduledDate: set.ScheduledDate.Format("2006-01-02"),
		Status:        set.StatusAt(now),
		Editable:      set.EditableAt(now),
		CreatedBy:     set.CreatedBy,
		CreatedAt:     set.CreatedAt,
	}
	for _, q := range set.Questions {
		options, err := q.OptionList()
		if err != nil {
			return nil, fmt.Errorf("failed to decode options for question %d: %w", q.ID, err)
		}
		detail.Questions = append(detail.Questions, QuestionWithKey{
			Position:      q.Position,
			Text:          q.Text,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return detail, nil
}

func toQuestionInputs(questions []QuestionRequest) []validator.QuestionInput {
	inputs := make([]validator.QuestionInput, 0, len(questions))
	for _, q := range questions {
		inputs = append(inputs, validator.QuestionInput{
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return inputs
}

func buildQuestions(requests []QuestionRequest) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(requests))
	for i, q := range requests {
		encoded, err := models.EncodeOptions(q.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		questions = append(questions, models.Question{
			Position:      i,
			Text:          q.Text,
			Options:       encoded,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return questions, nil
}
