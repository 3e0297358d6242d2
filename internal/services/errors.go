package services

import (
	"errors"
	"fmt"

	apperrors "github.com/quizdash/quiz-service/internal/errors"
)

// Sentinel errors for quiz flow control
var (
	ErrSetNotFound      = errors.New("question set not found")
	ErrQuestionNotFound = errors.New("question not found at the requested index")
	ErrInvalidIndex     = errors.New("question index out of range")
	ErrAlreadyAttempted = errors.New("set already attempted by this user")
	ErrSetNotEditable   = errors.New("set can no longer be modified")
	ErrDateTaken        = errors.New("a set is already scheduled for this date")
	ErrUserNotFound     = errors.New("user not found")
	ErrUnauthorized     = errors.New("authentication required")
)

// BusinessRuleError carries a named rule violation that is not a plain field
// validation failure.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

// PermissionError reports an authenticated caller acting outside their role.
type PermissionError struct {
	UserID string
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s is not permitted to %s", e.UserID, e.Action)
}

func NewPermissionError(userID, action string) *PermissionError {
	return &PermissionError{UserID: userID, Action: action}
}

// ===== ERROR CLASSIFICATION =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrSetNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyAttempted) || errors.Is(err, ErrDateTaken)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre) || errors.Is(err, ErrSetNotEditable) || errors.Is(err, ErrInvalidIndex)
}

func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}
