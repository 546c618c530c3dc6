package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kiosk-quiz/internal/adapter"
	"kiosk-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
)

type quizFixture struct {
	provider  *MockQuestionProvider
	sink      *MockResponseSink
	navigator *MockNavigator
	view      *fakeView
	store     *adapter.MemoryStore
	logs      *observer.ObservedLogs
	machine   *QuizMachine
}

func newQuizFixture(t *testing.T, heldSessionID string) *quizFixture {
	t.Helper()
	ctx := context.Background()
	log, logs := newObservedLogger()

	store := adapter.NewMemoryStore()
	if heldSessionID != "" {
		require.NoError(t, store.Set(ctx, domain.SessionIDKey, heldSessionID))
	}

	f := &quizFixture{
		provider:  new(MockQuestionProvider),
		sink:      new(MockResponseSink),
		navigator: new(MockNavigator),
		view:      newFakeView(),
		store:     store,
		logs:      logs,
	}
	session := NewSessionIDTracker(ctx, store, log)
	f.machine = NewQuizMachine(f.provider, f.sink, f.view, f.navigator, session, log)
	return f
}

func submission(questionID int64, choice domain.Choice, sessionID string) domain.ResponseSubmission {
	return domain.ResponseSubmission{QuestionID: questionID, Choice: choice, SessionID: sessionID}
}

func TestQuizMachine_AllRightCapsAtLastResultPage(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "")
	f.provider.On("FetchQuestions", mock.Anything, 1).Return(testQuestions(6), nil).Once()
	f.sink.On("SubmitResponse", mock.Anything, mock.AnythingOfType("domain.ResponseSubmission")).
		Return(&domain.SubmitResult{SessionID: "s-1"}, nil)
	f.navigator.On("Navigate", mock.Anything, "/5.html").Return(nil).Once()

	require.NoError(t, f.machine.SelectQuestionSet(ctx, 1))
	for i := 0; i < 6; i++ {
		assert.Equal(t, i, f.machine.Snapshot().Cursor)
		require.NoError(t, f.machine.RecordChoice(ctx, domain.ChoiceRight))
	}

	progress := f.machine.Snapshot()
	assert.Equal(t, StateTerminal, progress.State)
	assert.Equal(t, 6, progress.Tally)
	assert.Equal(t, 6, progress.Cursor)
	assert.Equal(t, "/5.html", progress.ResultPage)
	assert.NotEmpty(t, progress.RunID)

	expected := []string{"set_selection:false"}
	for _, q := range testQuestions(6) {
		expected = append(expected, "clear", "question:"+q.Question+"|no|yes")
	}
	assert.Equal(t, expected, f.view.Calls())

	f.provider.AssertExpectations(t)
	f.navigator.AssertExpectations(t)
	f.sink.AssertNumberOfCalls(t, "SubmitResponse", 6)
}

func TestQuizMachine_ResultPageFollowsTally(t *testing.T) {
	tests := []struct {
		name    string
		choices []domain.Choice
		want    string
	}{
		{"all left", []domain.Choice{domain.ChoiceLeft, domain.ChoiceLeft}, "/0.html"},
		{"one right", []domain.Choice{domain.ChoiceLeft, domain.ChoiceRight}, "/1.html"},
		{"all right", []domain.Choice{domain.ChoiceRight, domain.ChoiceRight}, "/2.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newQuizFixture(t, "")
			f.provider.On("FetchQuestions", mock.Anything, 2).Return(testQuestions(len(tt.choices)), nil)
			f.sink.On("SubmitResponse", mock.Anything, mock.Anything).Return(&domain.SubmitResult{}, nil)
			f.navigator.On("Navigate", mock.Anything, tt.want).Return(nil).Once()

			require.NoError(t, f.machine.SelectQuestionSet(ctx, 2))
			for _, c := range tt.choices {
				require.NoError(t, f.machine.RecordChoice(ctx, c))
			}

			assert.Equal(t, tt.want, f.machine.Snapshot().ResultPage)
			f.navigator.AssertExpectations(t)
		})
	}
}

func TestQuizMachine_EmptyQuestionSet(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "")
	f.provider.On("FetchQuestions", mock.Anything, 9).Return([]domain.Question{}, nil).Once()

	err := f.machine.SelectQuestionSet(ctx, 9)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrDataUnavailable))

	progress := f.machine.Snapshot()
	assert.Equal(t, StateLoading, progress.State)
	assert.Equal(t, 0, progress.Cursor)
	assert.Equal(t, 0, progress.Tally)
	assert.Empty(t, f.view.Calls())
	assert.Equal(t, 1, f.logs.FilterMessage("No questions received from server").Len())
	f.navigator.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
}

func TestQuizMachine_FetchFailureAllowsReselect(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "")
	fetchErr := domain.NewTransportError("fetch failed", errors.New("connection refused"))
	f.provider.On("FetchQuestions", mock.Anything, 3).Return(nil, fetchErr).Once()
	f.provider.On("FetchQuestions", mock.Anything, 4).Return(testQuestions(1), nil).Once()

	err := f.machine.SelectQuestionSet(ctx, 3)
	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, StateLoading, f.machine.Snapshot().State)
	assert.Equal(t, 1, f.logs.FilterMessage("Failed to fetch questions").Len())

	require.NoError(t, f.machine.SelectQuestionSet(ctx, 4))
	progress := f.machine.Snapshot()
	assert.Equal(t, StatePresenting, progress.State)
	assert.Equal(t, 4, progress.SetID)
	f.provider.AssertExpectations(t)
}

func TestQuizMachine_SessionIDAdoptedOnce(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "")
	f.provider.On("FetchQuestions", mock.Anything, 1).Return(testQuestions(3), nil)
	f.sink.On("SubmitResponse", mock.Anything, submission(1, domain.ChoiceLeft, "")).
		Return(&domain.SubmitResult{SessionID: "s-1"}, nil).Once()
	f.sink.On("SubmitResponse", mock.Anything, submission(2, domain.ChoiceRight, "s-1")).
		Return(&domain.SubmitResult{SessionID: "s-2"}, nil).Once()
	f.sink.On("SubmitResponse", mock.Anything, submission(3, domain.ChoiceLeft, "s-1")).
		Return(&domain.SubmitResult{SessionID: "s-1"}, nil).Once()
	f.navigator.On("Navigate", mock.Anything, "/1.html").Return(nil)

	require.NoError(t, f.machine.SelectQuestionSet(ctx, 1))
	require.NoError(t, f.machine.RecordChoice(ctx, domain.ChoiceLeft))
	require.NoError(t, f.machine.RecordChoice(ctx, domain.ChoiceRight))
	require.NoError(t, f.machine.RecordChoice(ctx, domain.ChoiceLeft))

	stored, err := f.store.Get(ctx, domain.SessionIDKey)
	require.NoError(t, err)
	assert.Equal(t, "s-1", stored)
	f.sink.AssertExpectations(t)
}

func TestQuizMachine_HeldSessionIDSentWithEverySubmission(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "held")
	f.provider.On("FetchQuestions", mock.Anything, 1).Return(testQuestions(2), nil)
	f.sink.On("SubmitResponse", mock.Anything, submission(1, domain.ChoiceRight, "held")).
		Return(&domain.SubmitResult{SessionID: "other"}, nil).Once()
	f.sink.On("SubmitResponse", mock.Anything, submission(2, domain.ChoiceRight, "held")).
		Return(&domain.SubmitResult{SessionID: "other"}, nil).Once()
	f.navigator.On("Navigate", mock.Anything, "/2.html").Return(nil)

	require.NoError(t, f.machine.SelectQuestionSet(ctx, 1))
	require.NoError(t, f.machine.RecordChoice(ctx, domain.ChoiceRight))
	require.NoError(t, f.machine.RecordChoice(ctx, domain.ChoiceRight))

	stored, err := f.store.Get(ctx, domain.SessionIDKey)
	require.NoError(t, err)
	assert.Equal(t, "held", stored)
	f.sink.AssertExpectations(t)
}

func TestQuizMachine_SubmitFailureKeepsPosition(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "s")
	f.provider.On("FetchQuestions", mock.Anything, 1).Return(testQuestions(3), nil)
	submitErr := domain.NewTransportError("submit failed", errors.New("status 500"))
	f.sink.On("SubmitResponse", mock.Anything, submission(1, domain.ChoiceRight, "s")).
		Return(&domain.SubmitResult{SessionID: "s"}, nil).Once()
	f.sink.On("SubmitResponse", mock.Anything, submission(2, domain.ChoiceRight, "s")).
		Return(nil, submitErr).Once()

	require.NoError(t, f.machine.SelectQuestionSet(ctx, 1))
	require.NoError(t, f.machine.RecordChoice(ctx, domain.ChoiceRight))

	err := f.machine.RecordChoice(ctx, domain.ChoiceRight)
	assert.ErrorIs(t, err, submitErr)

	progress := f.machine.Snapshot()
	assert.Equal(t, StatePresenting, progress.State)
	assert.Equal(t, 1, progress.Cursor)
	assert.Equal(t, 1, progress.Tally)
	assert.Equal(t, 1, f.logs.FilterMessage("Error submitting response").Len())
	f.navigator.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)

	// the same question can be answered again
	f.sink.On("SubmitResponse", mock.Anything, submission(2, domain.ChoiceLeft, "s")).
		Return(&domain.SubmitResult{SessionID: "s"}, nil).Once()
	require.NoError(t, f.machine.RecordChoice(ctx, domain.ChoiceLeft))
	assert.Equal(t, 2, f.machine.Snapshot().Cursor)
	assert.Equal(t, 1, f.machine.Snapshot().Tally)
}

func TestQuizMachine_ConcurrentChoiceRejectedWhileSubmitting(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "s")
	f.provider.On("FetchQuestions", mock.Anything, 1).Return(testQuestions(2), nil)

	release := make(chan struct{})
	f.sink.On("SubmitResponse", mock.Anything, submission(1, domain.ChoiceRight, "s")).
		Run(func(mock.Arguments) { <-release }).
		Return(&domain.SubmitResult{SessionID: "s"}, nil).Once()

	require.NoError(t, f.machine.SelectQuestionSet(ctx, 1))

	done := make(chan error, 1)
	go func() { done <- f.machine.RecordChoice(ctx, domain.ChoiceRight) }()

	require.Eventually(t, func() bool {
		return f.machine.Snapshot().State == StateSubmitting
	}, time.Second, 5*time.Millisecond)

	err := f.machine.RecordChoice(ctx, domain.ChoiceLeft)
	assert.True(t, domain.HasCode(err, domain.ErrPreconditionFailed))

	close(release)
	require.NoError(t, <-done)

	progress := f.machine.Snapshot()
	assert.Equal(t, StatePresenting, progress.State)
	assert.Equal(t, 1, progress.Cursor)
	assert.Equal(t, 1, progress.Tally)
	f.sink.AssertNumberOfCalls(t, "SubmitResponse", 1)
}

func TestQuizMachine_Preconditions(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "")

	err := f.machine.SelectQuestionSet(ctx, 0)
	assert.True(t, domain.HasCode(err, domain.ErrInvalidInput))

	err = f.machine.RecordChoice(ctx, domain.ChoiceLeft)
	assert.True(t, domain.HasCode(err, domain.ErrPreconditionFailed))

	err = f.machine.RecordChoice(ctx, domain.Choice("up"))
	assert.True(t, domain.HasCode(err, domain.ErrInvalidInput))

	err = f.machine.PresentCurrent(ctx)
	assert.True(t, domain.HasCode(err, domain.ErrPreconditionFailed))
	assert.Equal(t, 1, f.logs.FilterMessage("No questions loaded yet").Len())

	_, err = f.machine.Finalize(ctx)
	assert.True(t, domain.HasCode(err, domain.ErrPreconditionFailed))

	f.provider.On("FetchQuestions", mock.Anything, 1).Return(testQuestions(2), nil).Once()
	require.NoError(t, f.machine.SelectQuestionSet(ctx, 1))

	err = f.machine.SelectQuestionSet(ctx, 1)
	assert.True(t, domain.HasCode(err, domain.ErrPreconditionFailed))

	_, err = f.machine.Finalize(ctx)
	assert.True(t, domain.HasCode(err, domain.ErrPreconditionFailed))

	f.sink.AssertNotCalled(t, "SubmitResponse", mock.Anything, mock.Anything)
	f.navigator.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
	f.provider.AssertNumberOfCalls(t, "FetchQuestions", 1)
}

func TestQuizMachine_QuestionWithoutID(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "")
	questions := testQuestions(1)
	questions[0].ID = 0
	f.provider.On("FetchQuestions", mock.Anything, 1).Return(questions, nil)

	require.NoError(t, f.machine.SelectQuestionSet(ctx, 1))
	err := f.machine.RecordChoice(ctx, domain.ChoiceRight)
	assert.True(t, domain.HasCode(err, domain.ErrPreconditionFailed))
	assert.Equal(t, StatePresenting, f.machine.Snapshot().State)
	assert.Equal(t, 1, f.logs.FilterMessage("Missing question_id for question").Len())
	f.sink.AssertNotCalled(t, "SubmitResponse", mock.Anything, mock.Anything)
}

func TestQuizMachine_FinalizeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "s")
	f.provider.On("FetchQuestions", mock.Anything, 1).Return(testQuestions(1), nil)
	f.sink.On("SubmitResponse", mock.Anything, mock.Anything).Return(&domain.SubmitResult{SessionID: "s"}, nil)
	f.navigator.On("Navigate", mock.Anything, "/1.html").Return(nil).Once()

	require.NoError(t, f.machine.SelectQuestionSet(ctx, 1))
	require.NoError(t, f.machine.RecordChoice(ctx, domain.ChoiceRight))

	page, err := f.machine.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/1.html", page)
	require.NoError(t, f.machine.PresentCurrent(ctx))

	err = f.machine.RecordChoice(ctx, domain.ChoiceRight)
	assert.True(t, domain.HasCode(err, domain.ErrPreconditionFailed))

	f.navigator.AssertNumberOfCalls(t, "Navigate", 1)
}

func TestQuizMachine_NavigationFailureCanBeRetried(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t, "s")
	f.provider.On("FetchQuestions", mock.Anything, 1).Return(testQuestions(1), nil)
	f.sink.On("SubmitResponse", mock.Anything, mock.Anything).Return(&domain.SubmitResult{SessionID: "s"}, nil)
	navErr := errors.New("display gone")
	f.navigator.On("Navigate", mock.Anything, "/0.html").Return(navErr).Once()
	f.navigator.On("Navigate", mock.Anything, "/0.html").Return(nil).Once()

	require.NoError(t, f.machine.SelectQuestionSet(ctx, 1))
	err := f.machine.RecordChoice(ctx, domain.ChoiceLeft)
	assert.ErrorIs(t, err, navErr)
	assert.Equal(t, StateFinalizing, f.machine.Snapshot().State)

	page, err := f.machine.Finalize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/0.html", page)
	assert.Equal(t, StateTerminal, f.machine.Snapshot().State)
	f.navigator.AssertExpectations(t)
}

func TestQuizState_String(t *testing.T) {
	assert.Equal(t, "awaiting_set_selection", StateAwaitingSetSelection.String())
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "unknown", QuizState(42).String())
}
