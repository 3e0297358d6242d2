package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/quizdash/quiz-service/internal/events"
	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/utils"
	"github.com/quizdash/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSetFixture(t *testing.T) (*setService, *memoryRepository, *events.MockEventPublisher) {
	t.Helper()
	repo := newMemoryRepository()
	publisher := events.NewMockEventPublisher()

	svc := NewSetService(repo, validator.New(), publisher, utils.NewDevelopmentLogger()).(*setService)
	svc.now = func() time.Time { return testClock }
	return svc, repo, publisher
}

func validCreateRequest(date string) *CreateSetRequest {
	req := &CreateSetRequest{ScheduledDate: date}
	for i := 0; i < models.QuestionsPerSet; i++ {
		req.Questions = append(req.Questions, QuestionRequest{
			Text:          fmt.Sprintf("Question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "C",
		})
	}
	return req
}

func TestCreateSet_Valid(t *testing.T) {
	svc, _, publisher := newSetFixture(t)

	detail, err := svc.CreateSet(context.Background(), "admin-1", validCreateRequest("2025-06-20"))
	require.NoError(t, err)

	assert.NotZero(t, detail.ID)
	assert.Equal(t, "2025-06-20", detail.ScheduledDate)
	assert.Equal(t, models.SetUpcoming, detail.Status)
	assert.True(t, detail.Editable)
	assert.Equal(t, "admin-1", detail.CreatedBy)
	require.Len(t, detail.Questions, models.QuestionsPerSet)
	assert.Equal(t, []string{"A", "B", "C", "D"}, detail.Questions[0].Options)
	assert.Equal(t, "C", detail.Questions[0].CorrectAnswer)

	published := publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.TopicSetScheduled, published[0].Topic)
}

func TestCreateSet_RejectsWrongQuestionCount(t *testing.T) {
	svc, _, _ := newSetFixture(t)

	req := validCreateRequest("2025-06-20")
	req.Questions = req.Questions[:4]

	_, err := svc.CreateSet(context.Background(), "admin-1", req)
	assert.True(t, IsValidation(err), "expected validation error, got %v", err)
}

func TestCreateSet_RejectsWrongOptionCount(t *testing.T) {
	svc, _, _ := newSetFixture(t)

	req := validCreateRequest("2025-06-20")
	req.Questions[2].Options = []string{"A", "B", "C"}

	_, err := svc.CreateSet(context.Background(), "admin-1", req)
	assert.True(t, IsValidation(err), "expected validation error, got %v", err)
}

func TestCreateSet_RejectsCorrectAnswerOutsideOptions(t *testing.T) {
	svc, _, _ := newSetFixture(t)

	req := validCreateRequest("2025-06-20")
	req.Questions[5].CorrectAnswer = "Z"

	_, err := svc.CreateSet(context.Background(), "admin-1", req)
	assert.True(t, IsValidation(err), "expected validation error, got %v", err)
}

func TestCreateSet_RejectsDuplicateOptions(t *testing.T) {
	svc, _, _ := newSetFixture(t)

	req := validCreateRequest("2025-06-20")
	req.Questions[1].Options = []string{"A", "A", "C", "D"}

	_, err := svc.CreateSet(context.Background(), "admin-1", req)
	assert.True(t, IsValidation(err), "expected validation error, got %v", err)
}

func TestCreateSet_RejectsBadDateFormat(t *testing.T) {
	svc, _, _ := newSetFixture(t)

	_, err := svc.CreateSet(context.Background(), "admin-1", validCreateRequest("20-06-2025"))
	assert.True(t, IsValidation(err), "expected validation error, got %v", err)
}

func TestCreateSet_RejectsOccupiedDate(t *testing.T) {
	svc, _, _ := newSetFixture(t)

	_, err := svc.CreateSet(context.Background(), "admin-1", validCreateRequest("2025-06-20"))
	require.NoError(t, err)

	_, err = svc.CreateSet(context.Background(), "admin-1", validCreateRequest("2025-06-20"))
	assert.ErrorIs(t, err, ErrDateTaken)
}

func TestUpdateSet_ReplacesQuestions(t *testing.T) {
	svc, _, _ := newSetFixture(t)

	detail, err := svc.CreateSet(context.Background(), "admin-1", validCreateRequest("2025-06-20"))
	require.NoError(t, err)

	update := &UpdateSetRequest{}
	for i := 0; i < models.QuestionsPerSet; i++ {
		update.Questions = append(update.Questions, QuestionRequest{
			Text:          fmt.Sprintf("Revised question %d", i+1),
			Options:       []string{"W", "X", "Y", "Z"},
			CorrectAnswer: "X",
		})
	}

	updated, err := svc.UpdateSet(context.Background(), "admin-1", detail.ID, update)
	require.NoError(t, err)
	require.Len(t, updated.Questions, models.QuestionsPerSet)
	assert.Equal(t, "Revised question 1", updated.Questions[0].Text)
	assert.Equal(t, "X", updated.Questions[0].CorrectAnswer)
}

func TestUpdateSet_Reschedule(t *testing.T) {
	svc, _, publisher := newSetFixture(t)

	detail, err := svc.CreateSet(context.Background(), "admin-1", validCreateRequest("2025-06-20"))
	require.NoError(t, err)

	newDate := "2025-06-25"
	updated, err := svc.UpdateSet(context.Background(), "admin-1", detail.ID, &UpdateSetRequest{
		ScheduledDate: &newDate,
	})
	require.NoError(t, err)
	assert.Equal(t, newDate, updated.ScheduledDate)

	// Create plus reschedule
	assert.Len(t, publisher.Published(), 2)
}

func TestUpdateSet_ExpiredSetIsImmutable(t *testing.T) {
	svc, repo, _ := newSetFixture(t)
	expired := seedSet(t, repo, testClock.AddDate(0, 0, -3))

	newDate := "2025-06-25"
	_, err := svc.UpdateSet(context.Background(), "admin-1", expired.ID, &UpdateSetRequest{
		ScheduledDate: &newDate,
	})
	assert.ErrorIs(t, err, ErrSetNotEditable)
}

func TestDeleteSet(t *testing.T) {
	svc, _, _ := newSetFixture(t)

	detail, err := svc.CreateSet(context.Background(), "admin-1", validCreateRequest("2025-06-20"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSet(context.Background(), "admin-1", detail.ID))

	_, err = svc.GetSet(context.Background(), detail.ID)
	assert.ErrorIs(t, err, ErrSetNotFound)
}

func TestDeleteSet_ExpiredSetIsImmutable(t *testing.T) {
	svc, repo, _ := newSetFixture(t)
	expired := seedSet(t, repo, testClock.AddDate(0, 0, -3))

	err := svc.DeleteSet(context.Background(), "admin-1", expired.ID)
	assert.ErrorIs(t, err, ErrSetNotEditable)
}

func TestDeleteSet_NotFound(t *testing.T) {
	svc, _, _ := newSetFixture(t)

	err := svc.DeleteSet(context.Background(), "admin-1", 404)
	assert.ErrorIs(t, err, ErrSetNotFound)
}
