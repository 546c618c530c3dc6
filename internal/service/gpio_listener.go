package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"kiosk-quiz/internal/domain"
	"kiosk-quiz/internal/dto"

	"go.uber.org/zap"
)

// DefaultReconnectDelay is the fixed wait before re-opening a failed event stream
const DefaultReconnectDelay = 5 * time.Second

// EventSubscriber opens one push-event connection and delivers raw message data
// until the connection ends. It always returns a non-nil error.
type EventSubscriber interface {
	Subscribe(ctx context.Context, onOpen func(), onMessage func(data string)) error
}

// ChoiceFilter decides which choices a page accepts from the event stream
type ChoiceFilter func(choice string) bool

// QuizChoices accepts only left and right
func QuizChoices(choice string) bool {
	return domain.Choice(choice).Valid()
}

// AnyChoice accepts every non-empty choice
func AnyChoice(choice string) bool {
	return choice != ""
}

// GPIOListener funnels hardware button presses pushed by the server into the same
// handler the on-screen controls use. It reconnects forever after a constant delay;
// events sent while disconnected are lost.
type GPIOListener struct {
	stream         EventSubscriber
	handler        func(ctx context.Context, choice string)
	accept         ChoiceFilter
	reconnectDelay time.Duration
	log            *zap.Logger
}

// NewGPIOListener creates a listener. A nil accept filter accepts any non-empty choice.
func NewGPIOListener(
	stream EventSubscriber,
	handler func(ctx context.Context, choice string),
	accept ChoiceFilter,
	reconnectDelay time.Duration,
	log *zap.Logger,
) *GPIOListener {
	if accept == nil {
		accept = AnyChoice
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GPIOListener{
		stream:         stream,
		handler:        handler,
		accept:         accept,
		reconnectDelay: reconnectDelay,
		log:            log.With(zap.String("component", "gpio")),
	}
}

// Run keeps the subscription alive until ctx is done
func (l *GPIOListener) Run(ctx context.Context) error {
	l.log.Info("Setting up GPIO listeners")
	for {
		err := l.stream.Subscribe(ctx,
			func() { l.log.Info("GPIO EventSource connected") },
			func(data string) { l.HandleMessage(ctx, data) },
		)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Error("GPIO EventSource error", zap.Error(err), zap.Duration("retry_in", l.reconnectDelay))

		timer := time.NewTimer(l.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// HandleMessage processes the data of one stream message
func (l *GPIOListener) HandleMessage(ctx context.Context, data string) {
	if strings.Contains(data, "heartbeat") {
		return
	}

	var event dto.GPIOEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		l.log.Error("Error parsing GPIO event",
			zap.Error(domain.NewMalformedPayloadError("unparsable GPIO event", err)),
			zap.String("raw", data),
		)
		return
	}
	if !l.accept(event.Choice) {
		l.log.Debug("Ignoring GPIO event", zap.String("choice", event.Choice))
		return
	}

	l.log.Info("Processing GPIO button press", zap.String("choice", event.Choice))
	l.handler(ctx, event.Choice)
}
