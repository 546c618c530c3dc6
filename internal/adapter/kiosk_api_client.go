package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"kiosk-quiz/internal/domain"
	"kiosk-quiz/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// KioskAPIClient talks to the kiosk HTTP server. It implements
// domain.QuestionProvider, domain.ResponseSink and domain.NavigationDecider.
type KioskAPIClient struct {
	baseURL string
	timeout time.Duration
}

// NewKioskAPIClient creates a client for the server at baseURL (no trailing slash)
func NewKioskAPIClient(baseURL string, timeout time.Duration) *KioskAPIClient {
	return &KioskAPIClient{baseURL: baseURL, timeout: timeout}
}

// FetchQuestions implements domain.QuestionProvider.
// setID 0 leaves the choice of set to the server.
func (c *KioskAPIClient) FetchQuestions(ctx context.Context, setID int) ([]domain.Question, error) {
	url := c.baseURL + "/fetch_questions"
	if setID > 0 {
		url = fmt.Sprintf("%s?set_id=%d", url, setID)
	}

	var resp []dto.QuestionResponse
	if err := c.do(ctx, fiber.Get(url), &resp); err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(resp))
	for _, q := range resp {
		questions = append(questions, domain.Question{
			ID:          q.ID,
			Question:    q.Question,
			LeftChoice:  q.LeftChoice,
			RightChoice: q.RightChoice,
		})
	}
	return questions, nil
}

// SubmitResponse implements domain.ResponseSink
func (c *KioskAPIClient) SubmitResponse(ctx context.Context, submission domain.ResponseSubmission) (*domain.SubmitResult, error) {
	req := dto.SubmitResponseRequest{
		QuestionID: submission.QuestionID,
		Choice:     string(submission.Choice),
	}
	if submission.SessionID != "" {
		sessionID := submission.SessionID
		req.SessionID = &sessionID
	}

	var resp dto.SubmitResponseResponse
	if err := c.do(ctx, fiber.Post(c.baseURL+"/submit_response").JSON(req), &resp); err != nil {
		return nil, err
	}
	return &domain.SubmitResult{SessionID: resp.SessionID}, nil
}

// Decide implements domain.NavigationDecider
func (c *KioskAPIClient) Decide(ctx context.Context, currentPage string, choice string) (*domain.NavigationDecision, error) {
	req := dto.NavigationRequest{CurrentPage: currentPage, Choice: choice}

	var resp dto.NavigationResponse
	if err := c.do(ctx, fiber.Post(c.baseURL+"/handle-navigation").JSON(req), &resp); err != nil {
		return nil, err
	}

	decision := &domain.NavigationDecision{}
	if resp.Redirect != nil {
		decision.Redirect = *resp.Redirect
	}
	return decision, nil
}

// Health probes GET /health
func (c *KioskAPIClient) Health(ctx context.Context) error {
	var resp dto.HealthResponse
	if err := c.do(ctx, fiber.Get(c.baseURL+"/health"), &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return domain.NewTransportError(fmt.Sprintf("server reported status %q", resp.Status), nil)
	}
	return nil
}

// do sends the request and decodes a 2xx JSON body into out.
// The agent is released by Bytes.
func (c *KioskAPIClient) do(ctx context.Context, agent *fiber.Agent, out interface{}) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return domain.NewTransportError("request cancelled", err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return domain.NewTransportError("request failed", errors.Join(errs...))
	}
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		return domain.NewTransportError(fmt.Sprintf("server responded with %d", code), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewMalformedPayloadError("failed to decode server response", err)
	}
	return nil
}
