package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quizdash/quiz-service/internal/cache"
	"github.com/quizdash/quiz-service/internal/events"
	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/repositories"
	"github.com/quizdash/quiz-service/internal/utils"
	"github.com/quizdash/quiz-service/internal/validator"
)

// sessionService runs the question-by-question quiz flow. Progress lives on
// the client; the server holds no per-session state and only writes when a
// run reaches a terminal outcome.
type sessionService struct {
	repo      repositories.TransactionRepository
	validator *validator.Validator
	cache     cache.Cache
	events    events.EventPublisher
	logger    utils.Logger
	now       func() time.Time
}

func NewSessionService(
	repo repositories.TransactionRepository,
	v *validator.Validator,
	c cache.Cache,
	publisher events.EventPublisher,
	logger utils.Logger,
) SessionService {
	return &sessionService{
		repo:      repo,
		validator: v,
		cache:     c,
		events:    publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// FetchQuestion is a pure read. It never reveals the correct answer and
// never touches the attempt ledger.
func (s *sessionService) FetchQuestion(ctx context.Context, userID string, setID uint, index int) (*FetchQuestionResponse, error) {
	if index < 0 || index >= models.QuestionsPerSet {
		return nil, ErrInvalidIndex
	}

	set, err := s.repo.Sets().GetByIDWithQuestions(ctx, setID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("failed to load set %d: %w", setID, err)
	}

	question := questionAt(set, index)
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	options, err := question.OptionList()
	if err != nil {
		return nil, fmt.Errorf("failed to decode options for question %d: %w", question.ID, err)
	}

	return &FetchQuestionResponse{
		SetID:          set.ID,
		Index:          index,
		Text:           question.Text,
		Options:        options,
		TotalQuestions: models.QuestionsPerSet,
	}, nil
}

// SubmitAnswer grades one answer. A correct answer on a non-final question
// just advances the client; any other outcome is terminal and commits the
// attempt record and ledger update in one transaction.
func (s *sessionService) SubmitAnswer(ctx context.Context, userID string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	index := *req.Index

	set, err := s.repo.Sets().GetByIDWithQuestions(ctx, req.SetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSetNotFound
		}
		return nil, fmt.Errorf("failed to load set %d: %w", req.SetID, err)
	}

	attempted, err := s.repo.Attempts().HasAttempt(ctx, userID, set.ID)
	if err != nil {
		return nil, err
	}
	if attempted {
		return nil, ErrAlreadyAttempted
	}

	question := questionAt(set, index)
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	isCorrect := req.SelectedAnswer == question.CorrectAnswer
	isLast := index == models.QuestionsPerSet-1

	if isCorrect && !isLast {
		next := index + 1
		return &SubmitAnswerResponse{
			Completed: false,
			Success:   true,
			NextIndex: &next,
			Message:   "Correct! On to the next question.",
		}, nil
	}

	// Terminal outcome. A full run is worth QuestionsPerSet points; a wrong
	// answer scores one point per question already cleared.
	finalScore := index
	if isCorrect {
		finalScore = models.QuestionsPerSet
	}

	cumulative, err := s.recordAttempt(ctx, userID, set, finalScore, req.TimeTaken)
	if err != nil {
		return nil, err
	}

	s.afterCompletion(ctx, userID, set.ID, finalScore, req.TimeTaken)

	message := "Wrong answer. Your run ends here, see you tomorrow!"
	if isCorrect {
		message = "Perfect run! You cleared every question."
	}
	return &SubmitAnswerResponse{
		Completed:  true,
		Success:    isCorrect,
		TotalScore: &cumulative,
		Message:    message,
	}, nil
}

// recordAttempt appends the attempt record and folds the score into the
// user's ledger atomically, returning the cumulative score after the fold.
// The ledger row lock serializes concurrent submits per user; the unique
// attempt index settles races on the same (user, set) pair.
func (s *sessionService) recordAttempt(ctx context.Context, userID string, set *models.QuestionSet, finalScore, timeTaken int) (int, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.ErrorContext(ctx, "rollback failed", "error", rbErr)
			}
		}
	}()

	ledger, err := tx.Attempts().LockLedger(ctx, userID)
	if err != nil {
		return 0, err
	}

	attempt := &models.AttemptRecord{
		UserID:    userID,
		SetID:     set.ID,
		DateOfSet: models.DateOf(set.ScheduledDate),
		Score:     finalScore,
		TimeTaken: timeTaken,
	}
	if err := tx.Attempts().Create(ctx, attempt); err != nil {
		if repositories.IsDuplicateError(err) {
			return 0, ErrAlreadyAttempted
		}
		return 0, fmt.Errorf("failed to record attempt: %w", err)
	}

	ledger.TotalScore += finalScore
	ledger.TotalTimeTaken += timeTaken
	ledger.GamesPlayed++
	if err := tx.Attempts().UpdateLedger(ctx, ledger); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	committed = true
	return ledger.TotalScore, nil
}

// afterCompletion runs the best-effort side effects of a finished attempt.
// Failures are logged, never propagated; the attempt has already committed.
func (s *sessionService) afterCompletion(ctx context.Context, userID string, setID uint, finalScore, timeTaken int) {
	if err := s.cache.Delete(ctx, leaderboardCacheKey); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate leaderboard cache", "error", err)
	}

	event := events.NewAttemptCompletedEvent(userID, setID, finalScore, timeTaken)
	if err := s.events.Publish(ctx, events.TopicAttemptCompleted, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish attempt completed event",
			"user_id", userID, "set_id", setID, "error", err)
	}
}

// ListSets returns the catalog as the player sees it, with playability
// resolved against today's date and their own attempt history.
func (s *sessionService) ListSets(ctx context.Context, userID string) ([]*SetSummary, error) {
	sets, err := s.repo.Sets().List(ctx, repositories.SetFilters{})
	if err != nil {
		return nil, err
	}

	attempted, err := s.repo.Attempts().AttemptedSetIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summaries := make([]*SetSummary, 0, len(sets))
	for _, set := range sets {
		hasPlayed := attempted[set.ID]
		summaries = append(summaries, &SetSummary{
			ID:            set.ID,
			ScheduledDate: set.ScheduledDate.Format("2006-01-02"),
			Status:        set.StatusAt(now),
			Playable:      set.PlayableAt(now, hasPlayed),
			HasPlayed:     hasPlayed,
			QuestionCount: models.QuestionsPerSet,
		})
	}
	return summaries, nil
}

// AttemptHistory lists the caller's completed attempts, newest first.
func (s *sessionService) AttemptHistory(ctx context.Context, userID string) ([]*AttemptSummary, error) {
	attempts, err := s.repo.Attempts().GetByUser(ctx, userID, repositories.AttemptFilters{})
	if err != nil {
		return nil, err
	}

	history := make([]*AttemptSummary, 0, len(attempts))
	for _, attempt := range attempts {
		history = append(history, &AttemptSummary{
			SetID:     attempt.SetID,
			DateOfSet: attempt.DateOfSet.Format("2006-01-02"),
			Score:     attempt.Score,
			TimeTaken: attempt.TimeTaken,
			PlayedAt:  attempt.CreatedAt,
		})
	}
	return history, nil
}

func questionAt(set *models.QuestionSet, index int) *models.Question {
	for i := range set.Questions {
		if set.Questions[i].Position == index {
			return &set.Questions[i]
		}
	}
	return nil
}
