package service

import (
	"context"
	"fmt"
	"sync"

	"kiosk-quiz/internal/domain"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// --- MockQuestionProvider ---
type MockQuestionProvider struct {
	mock.Mock
}

func (m *MockQuestionProvider) FetchQuestions(ctx context.Context, setID int) ([]domain.Question, error) {
	args := m.Called(ctx, setID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}

// --- MockResponseSink ---
type MockResponseSink struct {
	mock.Mock
}

func (m *MockResponseSink) SubmitResponse(ctx context.Context, submission domain.ResponseSubmission) (*domain.SubmitResult, error) {
	args := m.Called(ctx, submission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubmitResult), args.Error(1)
}

// --- MockNavigationDecider ---
type MockNavigationDecider struct {
	mock.Mock
}

func (m *MockNavigationDecider) Decide(ctx context.Context, currentPage, choice string) (*domain.NavigationDecision, error) {
	args := m.Called(ctx, currentPage, choice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NavigationDecision), args.Error(1)
}

// --- MockNavigator ---
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Navigate(ctx context.Context, target string) error {
	args := m.Called(ctx, target)
	return args.Error(0)
}

// --- MockStore ---
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// --- fakeView ---
// fakeView records every call made on the quiz view and control surface.
type fakeView struct {
	mu       sync.Mutex
	calls    []string
	controls map[string]bool
	active   map[string]bool
}

func newFakeView(controls ...string) *fakeView {
	v := &fakeView{controls: make(map[string]bool), active: make(map[string]bool)}
	for _, c := range controls {
		v.controls[c] = true
	}
	return v
}

func (v *fakeView) record(format string, args ...interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, fmt.Sprintf(format, args...))
}

func (v *fakeView) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

func (v *fakeView) IsActive(direction string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active[direction]
}

func (v *fakeView) ShowSetSelection(visible bool) { v.record("set_selection:%t", visible) }
func (v *fakeView) ClearQuestion()                { v.record("clear") }
func (v *fakeView) ShowQuestion(prompt, left, right string) {
	v.record("question:%s|%s|%s", prompt, left, right)
}
func (v *fakeView) ShowPage(path string) { v.record("page:%s", path) }

func (v *fakeView) HasControl(direction string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.controls[direction]
}

func (v *fakeView) SetActive(direction string, active bool) {
	v.mu.Lock()
	v.active[direction] = active
	v.mu.Unlock()
	v.record("active:%s:%t", direction, active)
}

func (v *fakeView) SetNavigating(navigating bool)       { v.record("navigating:%t", navigating) }
func (v *fakeView) SetTransitioning(transitioning bool) { v.record("transitioning:%t", transitioning) }

// --- fakeDisplay ---
type fakeDisplay struct {
	mu         sync.Mutex
	fullscreen bool
	requests   int
	failWith   error
	changes    chan struct{}
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{changes: make(chan struct{}, 8)}
}

func (d *fakeDisplay) RequestFullscreen(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests++
	if d.failWith != nil {
		return d.failWith
	}
	d.fullscreen = true
	return nil
}

func (d *fakeDisplay) IsFullscreen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fullscreen
}

func (d *fakeDisplay) Changes() <-chan struct{} { return d.changes }

func (d *fakeDisplay) Requests() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests
}

// exit simulates the user leaving fullscreen
func (d *fakeDisplay) exit() {
	d.mu.Lock()
	d.fullscreen = false
	d.mu.Unlock()
	d.changes <- struct{}{}
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func testQuestions(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:          int64(i + 1),
			Question:    fmt.Sprintf("Q%d", i+1),
			LeftChoice:  "no",
			RightChoice: "yes",
		}
	}
	return questions
}
