package domain

import "context"

// QuestionProvider fetches the ordered questions of a question set
type QuestionProvider interface {
	// FetchQuestions returns the questions of setID in presentation order
	FetchQuestions(ctx context.Context, setID int) ([]Question, error)
}

// ResponseSink records answers
type ResponseSink interface {
	// SubmitResponse stores one answer and returns the respondent's session id
	SubmitResponse(ctx context.Context, submission ResponseSubmission) (*SubmitResult, error)
}

// NavigationDecider computes the next page for a directional press on a non-quiz page
type NavigationDecider interface {
	Decide(ctx context.Context, currentPage string, choice string) (*NavigationDecision, error)
}

// Navigator moves the kiosk to another page
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// QuizView receives what the quiz page shows
type QuizView interface {
	// ShowSetSelection shows or hides the question set overlay
	ShowSetSelection(visible bool)
	// ClearQuestion blanks the prompt and both labels
	ClearQuestion()
	// ShowQuestion displays the prompt and the two choice labels
	ShowQuestion(prompt, left, right string)
}

// ControlSurface exposes the directional controls of a page and its transition states
type ControlSurface interface {
	// HasControl reports whether the current page offers a control for direction
	HasControl(direction string) bool
	SetActive(direction string, active bool)
	SetNavigating(navigating bool)
	SetTransitioning(transitioning bool)
}

// Display is the screen the kiosk keeps in fullscreen
type Display interface {
	// RequestFullscreen asks the display to enter fullscreen
	RequestFullscreen(ctx context.Context) error
	// IsFullscreen reports whether any fullscreen indicator is currently set
	IsFullscreen() bool
	// Changes delivers one value per fullscreen change notification
	Changes() <-chan struct{}
}
