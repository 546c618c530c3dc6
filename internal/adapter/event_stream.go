package adapter

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"

	"kiosk-quiz/internal/domain"
)

// StreamError represents an error of the event stream itself
type StreamError string

func (e StreamError) Error() string {
	return string(e)
}

// ErrStreamClosed is wrapped by Subscribe when the server ends the stream
const ErrStreamClosed = StreamError("event stream: closed by server")

// EventStream is one server-sent-event subscription to the GPIO event endpoint.
// Each Subscribe call opens a single connection; reconnecting is the caller's job.
type EventStream struct {
	url    string
	client *http.Client
}

// NewEventStream creates an EventStream for url. A nil client uses a client without
// timeout, since the stream is long-lived.
func NewEventStream(url string, client *http.Client) *EventStream {
	if client == nil {
		client = &http.Client{}
	}
	return &EventStream{url: url, client: client}
}

// URL returns the stream endpoint
func (s *EventStream) URL() string {
	return s.url
}

// Subscribe connects and calls onMessage with the data of every event until the
// stream ends, fails, or ctx is cancelled. It always returns a non-nil error.
func (s *EventStream) Subscribe(ctx context.Context, onOpen func(), onMessage func(data string)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return domain.NewTransportError("failed to build event stream request", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.NewTransportError("failed to connect to event stream", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewTransportError(fmt.Sprintf("event stream responded with %d", resp.StatusCode), nil)
	}
	if onOpen != nil {
		onOpen()
	}

	scanner := bufio.NewScanner(resp.Body)
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// blank line terminates an event
			if len(data) > 0 {
				onMessage(strings.Join(data, "\n"))
				data = data[:0]
			}
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.NewTransportError("event stream read failed", err)
	}
	return domain.NewTransportError("event stream ended", ErrStreamClosed)
}
