package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/quizdash/quiz-service/internal/errors"
	"github.com/quizdash/quiz-service/internal/models"
)

// Validator wraps go-playground/validator with the domain's custom tags.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	// Report field names from json tags so API errors match the wire format
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("question_count", validateQuestionCount)
	validate.RegisterValidation("option_count", validateOptionCount)
	validate.RegisterValidation("activity_window", validateActivityWindow)
	validate.RegisterValidation("user_role", validateUserRole)

	return &Validator{validate: validate}
}

// ValidateStruct validates tagged struct fields, returning the domain's
// ValidationErrors type on failure.
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := errors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

func validateQuestionCount(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	return field.Len() == models.QuestionsPerSet
}

func validateOptionCount(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	return field.Len() == models.OptionsPerQuestion
}

func validateActivityWindow(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "daily", "weekly", "monthly", "yearly":
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleUser, models.RoleAdmin:
		return true
	}
	return false
}
