package domain

import (
	"fmt"
	"strings"
)

// Choice is one of the two fixed answer labels of a question
type Choice string

const (
	ChoiceLeft  Choice = "left"
	ChoiceRight Choice = "right"
)

// Valid reports whether c is left or right
func (c Choice) Valid() bool {
	return c == ChoiceLeft || c == ChoiceRight
}

// ParseChoice converts a raw label into a Choice
func ParseChoice(raw string) (Choice, error) {
	c := Choice(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", NewInvalidInputError(fmt.Sprintf("invalid choice: %q", raw))
	}
	return c, nil
}

// Question represents one binary-choice question of a question set.
// It is immutable once fetched.
type Question struct {
	ID          int64  `json:"id"`
	Question    string `json:"question"`
	LeftChoice  string `json:"left_choice"`
	RightChoice string `json:"right_choice"`
}

// Validate validates the question
func (q *Question) Validate() error {
	if q == nil {
		return NewPreconditionError("question is missing")
	}
	if q.ID == 0 {
		return NewPreconditionError("question_id is missing")
	}
	return nil
}

// ResponseSubmission is one recorded answer sent to the response sink.
// An empty SessionID is sent as null.
type ResponseSubmission struct {
	QuestionID int64
	Choice     Choice
	SessionID  string
}

// SubmitResult is what the response sink returns on success
type SubmitResult struct {
	SessionID string
}

// NavigationDecision is the server's answer to a directional press.
// An empty Redirect means "stay".
type NavigationDecision struct {
	Redirect string
}

// ResultPage maps a right-choice tally onto one of the six result pages.
func ResultPage(tally int) string {
	page := tally
	if page > MaxResultPage {
		page = MaxResultPage
	}
	if page < 0 {
		page = 0
	}
	return fmt.Sprintf("/%d.html", page)
}

// MaxResultPage caps the tally for result routing
const MaxResultPage = 5
