package service

import (
	"context"
	"fmt"
	"sync"

	"kiosk-quiz/internal/domain"
	"kiosk-quiz/internal/util"

	"go.uber.org/zap"
)

// QuizState is the phase of one quiz session
type QuizState int

const (
	StateAwaitingSetSelection QuizState = iota
	StateLoading
	StatePresenting
	StateSubmitting
	StateFinalizing
	StateTerminal
)

func (s QuizState) String() string {
	switch s {
	case StateAwaitingSetSelection:
		return "awaiting_set_selection"
	case StateLoading:
		return "loading"
	case StatePresenting:
		return "presenting"
	case StateSubmitting:
		return "submitting"
	case StateFinalizing:
		return "finalizing"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// QuizProgress is a point-in-time copy of the machine's state
type QuizProgress struct {
	State      QuizState
	SetID      int
	Cursor     int
	Tally      int
	Total      int
	RunID      string
	ResultPage string
}

// QuizMachine walks one respondent through a question set: select a set, present
// each question, record one choice per question in order, then route to the result
// page picked by the number of right choices.
//
// Collaborator calls happen outside the lock. While a submission is in flight the
// machine is in StateSubmitting and rejects further choices.
type QuizMachine struct {
	provider  domain.QuestionProvider
	sink      domain.ResponseSink
	view      domain.QuizView
	navigator domain.Navigator
	session   *SessionIDTracker
	log       *zap.Logger

	mu         sync.Mutex
	state      QuizState
	fetching   bool
	navigating bool
	setID      int
	questions  []domain.Question
	cursor     int
	tally      int
	runID      string
	resultPage string
}

// NewQuizMachine creates a machine waiting for a question set selection
func NewQuizMachine(
	provider domain.QuestionProvider,
	sink domain.ResponseSink,
	view domain.QuizView,
	navigator domain.Navigator,
	session *SessionIDTracker,
	log *zap.Logger,
) *QuizMachine {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuizMachine{
		provider:  provider,
		sink:      sink,
		view:      view,
		navigator: navigator,
		session:   session,
		log:       log.With(zap.String("component", "quiz")),
		state:     StateAwaitingSetSelection,
	}
}

// Snapshot returns the current progress
func (m *QuizMachine) Snapshot() QuizProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return QuizProgress{
		State:      m.state,
		SetID:      m.setID,
		Cursor:     m.cursor,
		Tally:      m.tally,
		Total:      len(m.questions),
		RunID:      m.runID,
		ResultPage: m.resultPage,
	}
}

// SelectQuestionSet fetches the questions of setID and presents the first one.
// It is accepted only while no set is loaded; a failed or empty fetch leaves the
// machine in StateLoading so the user can pick again.
func (m *QuizMachine) SelectQuestionSet(ctx context.Context, setID int) error {
	if setID <= 0 {
		return domain.NewInvalidInputError(fmt.Sprintf("invalid question set: %d", setID))
	}

	m.mu.Lock()
	selectable := m.state == StateAwaitingSetSelection || (m.state == StateLoading && !m.fetching)
	if !selectable {
		state := m.state
		m.mu.Unlock()
		m.log.Warn("Question set already selected", zap.Int("set_id", setID), zap.Stringer("state", state))
		return domain.NewPreconditionError("question set can no longer be changed")
	}
	m.state = StateLoading
	m.fetching = true
	m.setID = setID
	m.mu.Unlock()

	questions, err := m.provider.FetchQuestions(ctx, setID)

	m.mu.Lock()
	m.fetching = false
	if err != nil {
		m.mu.Unlock()
		m.log.Error("Failed to fetch questions", zap.Int("set_id", setID), zap.Error(err))
		return err
	}
	if len(questions) == 0 {
		m.mu.Unlock()
		m.log.Error("No questions received from server", zap.Int("set_id", setID))
		return domain.NewDataUnavailableError(fmt.Sprintf("no questions received for set %d", setID), nil)
	}

	m.questions = append([]domain.Question(nil), questions...)
	m.cursor = 0
	m.tally = 0
	m.runID = util.NewULID()
	m.state = StatePresenting
	runID := m.runID
	m.mu.Unlock()

	m.log.Info("Fetched questions",
		zap.String("run_id", runID),
		zap.Int("set_id", setID),
		zap.Int("count", len(questions)),
	)
	m.view.ShowSetSelection(false)
	return m.PresentCurrent(ctx)
}

// PresentCurrent pushes the current question to the view. With the cursor past the
// last question it finalizes instead.
func (m *QuizMachine) PresentCurrent(ctx context.Context) error {
	m.mu.Lock()
	if len(m.questions) == 0 {
		m.mu.Unlock()
		m.log.Error("No questions loaded yet")
		return domain.NewPreconditionError("no questions loaded yet")
	}
	if m.cursor >= len(m.questions) {
		if m.state != StateTerminal {
			m.state = StateFinalizing
		}
		m.mu.Unlock()
		_, err := m.Finalize(ctx)
		return err
	}
	q := m.questions[m.cursor]
	cursor, total, runID := m.cursor, len(m.questions), m.runID
	m.mu.Unlock()

	m.log.Debug("Loading question",
		zap.String("run_id", runID),
		zap.Int("index", cursor),
		zap.Int("total", total),
		zap.Int64("question_id", q.ID),
	)
	m.view.ClearQuestion()
	m.view.ShowQuestion(q.Question, q.LeftChoice, q.RightChoice)
	return nil
}

// RecordChoice submits the choice for the current question and advances.
// On submission failure nothing changes and the user may press again.
func (m *QuizMachine) RecordChoice(ctx context.Context, choice domain.Choice) error {
	if !choice.Valid() {
		m.log.Warn("Ignoring invalid choice", zap.String("choice", string(choice)))
		return domain.NewInvalidInputError(fmt.Sprintf("invalid choice: %q", choice))
	}

	m.mu.Lock()
	if m.state == StateSubmitting {
		m.mu.Unlock()
		m.log.Warn("Response already being submitted", zap.String("choice", string(choice)))
		return domain.NewPreconditionError("a response is already being submitted")
	}
	if m.state != StatePresenting || m.cursor >= len(m.questions) {
		state := m.state
		m.mu.Unlock()
		m.log.Error("No question available for response", zap.Stringer("state", state))
		return domain.NewPreconditionError("no question is being presented")
	}
	q := m.questions[m.cursor]
	index := m.cursor
	if err := q.Validate(); err != nil {
		m.mu.Unlock()
		m.log.Error("Missing question_id for question", zap.Int("index", index))
		return err
	}
	m.state = StateSubmitting
	runID := m.runID
	m.mu.Unlock()

	sessionID := m.session.ID()
	submission := domain.ResponseSubmission{QuestionID: q.ID, Choice: choice, SessionID: sessionID}
	m.log.Info("Submitting response",
		zap.String("run_id", runID),
		zap.Int("index", index),
		zap.Int64("question_id", q.ID),
		zap.String("choice", string(choice)),
		zap.String("session_id", sessionID),
	)

	result, err := m.sink.SubmitResponse(ctx, submission)
	if err != nil {
		m.mu.Lock()
		m.state = StatePresenting
		m.mu.Unlock()
		m.log.Error("Error submitting response",
			zap.String("run_id", runID),
			zap.Int("index", index),
			zap.Int64("question_id", q.ID),
			zap.Error(err),
		)
		return err
	}
	if result != nil {
		m.session.Adopt(ctx, result.SessionID)
	}

	m.mu.Lock()
	if choice == domain.ChoiceRight {
		m.tally++
	}
	m.cursor++
	finished := m.cursor >= len(m.questions)
	if finished {
		m.state = StateFinalizing
	} else {
		m.state = StatePresenting
	}
	tally := m.tally
	m.mu.Unlock()

	if finished {
		m.log.Info("All questions answered, determining result", zap.String("run_id", runID), zap.Int("right_count", tally))
		_, err := m.Finalize(ctx)
		return err
	}
	return m.PresentCurrent(ctx)
}

// Finalize navigates to the result page for the current tally and returns its path.
// Once navigation succeeded, further calls return the same page without navigating.
func (m *QuizMachine) Finalize(ctx context.Context) (string, error) {
	m.mu.Lock()
	switch {
	case m.state == StateTerminal:
		page := m.resultPage
		m.mu.Unlock()
		return page, nil
	case m.state != StateFinalizing:
		m.mu.Unlock()
		return "", domain.NewPreconditionError("questions remain unanswered")
	case m.navigating:
		m.mu.Unlock()
		return "", domain.NewPreconditionError("result navigation already in progress")
	}
	m.navigating = true
	page := domain.ResultPage(m.tally)
	tally, runID := m.tally, m.runID
	m.mu.Unlock()

	m.log.Info("Redirecting to result page", zap.String("run_id", runID), zap.Int("right_count", tally), zap.String("page", page))
	err := m.navigator.Navigate(ctx, page)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigating = false
	if err != nil {
		m.log.Error("Failed to navigate to result page", zap.String("page", page), zap.Error(err))
		return "", err
	}
	m.state = StateTerminal
	m.resultPage = page
	return page, nil
}
