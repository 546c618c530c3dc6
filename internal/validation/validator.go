package validation

import (
	"fmt"
	"strings"

	"kiosk-quiz/internal/domain"
)

// FieldError describes one invalid request field
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is a list of field errors; it is returned as an error by handlers
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePressRequest validates the choice of a control press
func (v *Validator) ValidatePressRequest(choice string) Errors {
	var errors Errors

	if strings.TrimSpace(choice) == "" {
		errors = append(errors, FieldError{Field: "choice", Message: "is required"})
	} else if len(choice) > 32 {
		errors = append(errors, FieldError{Field: "choice", Message: "must be at most 32 characters"})
	}

	return errors
}

// ValidateSelectSetRequest validates a question set selection
func (v *Validator) ValidateSelectSetRequest(setID int) Errors {
	var errors Errors

	if setID <= 0 {
		errors = append(errors, FieldError{Field: "set_id", Message: "must be a positive number", Value: setID})
	}

	return errors
}

// ValidateQuizChoice validates a choice pressed on the quiz page
func (v *Validator) ValidateQuizChoice(choice string) Errors {
	if _, err := domain.ParseChoice(choice); err != nil {
		return Errors{{Field: "choice", Message: "must be left or right", Value: choice}}
	}
	return nil
}
