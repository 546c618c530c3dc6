package service

import (
	"context"
	"sync"
	"time"

	"kiosk-quiz/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultAutoSelectDelay is the wait before a test-mode auto-selection of the question set
	DefaultAutoSelectDelay = 100 * time.Millisecond
	// gpioFlashDuration is how long a GPIO press keeps the quiz control highlighted
	gpioFlashDuration = 200 * time.Millisecond
)

// KioskView is everything the controller draws on
type KioskView interface {
	domain.QuizView
	domain.ControlSurface
	// ShowPage renders the page at path and resets its control and transition states
	ShowPage(path string)
}

// KioskOptions parameterises the single page controller that serves both the quiz
// page and the plain navigation pages.
type KioskOptions struct {
	StartPage   string
	QuizPage    string
	GPIOEnabled bool
	// AutoSelectSet picks this question set without user input; 0 disables it.
	AutoSelectSet   int
	AutoSelectDelay time.Duration
}

// KioskController owns the current page and routes every press, on-screen or GPIO,
// to the quiz machine on the quiz page and to the navigation handler elsewhere.
type KioskController struct {
	opts     KioskOptions
	provider domain.QuestionProvider
	sink     domain.ResponseSink
	view     KioskView
	session  *SessionIDTracker
	keeper   *FullscreenKeeper
	nav      *NavigationHandler
	listener *GPIOListener
	log      *zap.Logger

	mu      sync.Mutex
	page    string
	machine *QuizMachine
}

// NewKioskController wires a controller. keeper may be nil when fullscreen is not managed.
func NewKioskController(
	opts KioskOptions,
	provider domain.QuestionProvider,
	sink domain.ResponseSink,
	decider domain.NavigationDecider,
	view KioskView,
	session *SessionIDTracker,
	keeper *FullscreenKeeper,
	pressDelay, transitionDelay time.Duration,
	log *zap.Logger,
) *KioskController {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.QuizPage == "" {
		opts.QuizPage = "/quiz"
	}
	if opts.StartPage == "" {
		opts.StartPage = "/"
	}
	if opts.AutoSelectDelay <= 0 {
		opts.AutoSelectDelay = DefaultAutoSelectDelay
	}

	c := &KioskController{
		opts:     opts,
		provider: provider,
		sink:     sink,
		view:     view,
		session:  session,
		keeper:   keeper,
		log:      log,
	}
	c.nav = NewNavigationHandler(decider, view, c, pressDelay, transitionDelay, log)
	return c
}

// AttachEventStream enables the GPIO listener on stream. It is a no-op when GPIO is disabled.
func (c *KioskController) AttachEventStream(stream EventSubscriber, reconnectDelay time.Duration) {
	if !c.opts.GPIOEnabled {
		return
	}
	c.listener = NewGPIOListener(stream, c.PressFromGPIO, AnyChoice, reconnectDelay, c.log)
}

// CurrentPage returns the page the kiosk shows
func (c *KioskController) CurrentPage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Machine returns the quiz machine of the quiz page, or nil on other pages
func (c *KioskController) Machine() *QuizMachine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine
}

// Navigate implements domain.Navigator. Entering the quiz page starts a fresh quiz.
func (c *KioskController) Navigate(ctx context.Context, target string) error {
	var machine *QuizMachine
	if target == c.opts.QuizPage {
		machine = NewQuizMachine(c.provider, c.sink, c.view, c, c.session, c.log)
	}

	c.mu.Lock()
	c.page = target
	c.machine = machine
	c.mu.Unlock()

	c.log.Info("Navigated", zap.String("page", target))
	c.view.ShowPage(target)

	if machine == nil {
		return nil
	}
	c.view.ShowSetSelection(true)
	if setID := c.opts.AutoSelectSet; setID > 0 {
		go func() {
			if err := sleepContext(ctx, c.opts.AutoSelectDelay); err != nil {
				return
			}
			c.log.Info("Auto-selecting question set", zap.Int("set_id", setID))
			_ = machine.SelectQuestionSet(ctx, setID)
		}()
	}
	return nil
}

// Progress returns the progress of the running quiz; ok is false outside the quiz page
func (c *KioskController) Progress() (progress QuizProgress, ok bool) {
	machine := c.Machine()
	if machine == nil {
		return QuizProgress{}, false
	}
	return machine.Snapshot(), true
}

// SelectSet picks the question set on the quiz page
func (c *KioskController) SelectSet(ctx context.Context, setID int) error {
	machine := c.Machine()
	if machine == nil {
		return domain.NewPreconditionError("question sets can only be selected on the quiz page")
	}
	return machine.SelectQuestionSet(ctx, setID)
}

// Press handles an on-screen press of the left or right control
func (c *KioskController) Press(ctx context.Context, choice string) error {
	c.mu.Lock()
	page, machine := c.page, c.machine
	c.mu.Unlock()

	if machine != nil {
		parsed, err := domain.ParseChoice(choice)
		if err != nil {
			c.log.Warn("Ignoring invalid quiz choice", zap.String("choice", choice))
			return err
		}
		return machine.RecordChoice(ctx, parsed)
	}
	return c.nav.Press(ctx, page, choice)
}

// PressFromGPIO handles a hardware button press delivered by the event stream.
// Failures are already reported by the quiz machine or navigation handler.
func (c *KioskController) PressFromGPIO(ctx context.Context, choice string) {
	if c.Machine() != nil {
		if !QuizChoices(choice) {
			return
		}
		c.view.SetActive(choice, true)
		time.AfterFunc(gpioFlashDuration, func() { c.view.SetActive(choice, false) })
	}
	_ = c.Press(ctx, choice)
}

// EnterFullscreen enters fullscreen on request of the user
func (c *KioskController) EnterFullscreen(ctx context.Context) error {
	if c.keeper == nil {
		return domain.NewPreconditionError("fullscreen is not managed on this kiosk")
	}
	return c.keeper.Enter(ctx)
}

// Run shows the start page, then keeps fullscreen and the GPIO stream alive until ctx is done.
func (c *KioskController) Run(ctx context.Context) error {
	if c.CurrentPage() == "" {
		if err := c.Navigate(ctx, c.opts.StartPage); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if c.keeper != nil {
		g.Go(func() error { return c.keeper.Run(ctx) })
	}
	if c.listener != nil {
		g.Go(func() error { return c.listener.Run(ctx) })
	}
	return g.Wait()
}
