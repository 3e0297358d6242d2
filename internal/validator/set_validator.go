package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/quizdash/quiz-service/internal/errors"
	"github.com/quizdash/quiz-service/internal/models"
)

// QuestionInput is the shape every question must satisfy before it can be
// persisted, independent of which request DTO carried it.
type QuestionInput struct {
	Text          string
	Options       []string
	CorrectAnswer string
}

// ValidateQuestions applies the structural rules a set's question list must
// hold as a whole. All violations are collected, not just the first.
func ValidateQuestions(questions []QuestionInput) errors.ValidationErrors {
	var errs errors.ValidationErrors

	if len(questions) != models.QuestionsPerSet {
		errs = append(errs, *errors.NewValidationErrorWithRule(
			"questions",
			fmt.Sprintf("a set must contain exactly %d questions", models.QuestionsPerSet),
			"question_count",
			len(questions),
		))
		return errs
	}

	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)

		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, *errors.NewValidationError(
				field+".text", "is required", q.Text))
		}

		if len(q.Options) != models.OptionsPerQuestion {
			errs = append(errs, *errors.NewValidationErrorWithRule(
				field+".options",
				fmt.Sprintf("a question must contain exactly %d options", models.OptionsPerQuestion),
				"option_count",
				len(q.Options),
			))
			continue
		}

		seen := make(map[string]bool, len(q.Options))
		hasCorrect := false
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				errs = append(errs, *errors.NewValidationError(
					fmt.Sprintf("%s.options[%d]", field, j), "is required", opt))
			}
			if seen[opt] {
				errs = append(errs, *errors.NewValidationError(
					fmt.Sprintf("%s.options[%d]", field, j), "must be distinct within the question", opt))
			}
			seen[opt] = true
			if opt == q.CorrectAnswer {
				hasCorrect = true
			}
		}

		if strings.TrimSpace(q.CorrectAnswer) == "" {
			errs = append(errs, *errors.NewValidationError(
				field+".correct_answer", "is required", q.CorrectAnswer))
		} else if !hasCorrect {
			errs = append(errs, *errors.NewValidationError(
				field+".correct_answer", "must match one of the question's options", q.CorrectAnswer))
		}
	}

	return errs
}

// ValidateScheduledDate parses the wire-format date for a set schedule.
func ValidateScheduledDate(raw string) (time.Time, errors.ValidationErrors) {
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.ValidationErrors{
			*errors.NewValidationErrorWithRule(
				"scheduled_date", "must be a date in 2006-01-02 format", "datetime", raw),
		}
	}
	return parsed, nil
}
