// Package client calls the quiz HTTP API. It backs the terminal client.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"study-quiz/internal/domain"
	"study-quiz/internal/dto"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 2 * time.Minute

// APIError is a non 200 reply from the API. Its text is the server's
// message, so it can be shown to the user as is.
type APIError struct {
	StatusCode  int
	Code        string
	Message     string
	RawResponse string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to one quiz API server.
type Client struct {
	baseURL string
	timeout time.Duration
}

// New returns a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// RequestQuiz implements view.Requester over POST /api/generate-quiz.
func (c *Client) RequestQuiz(ctx context.Context, req domain.QuizRequest) (*domain.QuizResult, error) {
	agent := fiber.Post(c.baseURL + "/api/generate-quiz").
		Timeout(c.timeoutFor(ctx)).
		JSON(dto.GenerateQuizRequest{
			Subject:        req.Subject,
			Mode:           string(req.Mode),
			LearnedContent: req.LearnedContent,
			NumQuestions:   req.NumQuestions,
			QuestionType:   string(req.QuestionType),
			SpecificTopic:  req.SpecificTopic,
		})

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("calling quiz API: %w", errors.Join(errs...))
	}
	if status != fiber.StatusOK {
		return nil, decodeAPIError(status, body)
	}

	var resp dto.GenerateQuizResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding quiz response: %w", err)
	}
	return resp.ToDomain(), nil
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	status, body, errs := fiber.Get(c.baseURL + "/api/health").
		Timeout(c.timeoutFor(ctx)).
		Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("calling health API: %w", errors.Join(errs...))
	}
	if status != fiber.StatusOK {
		return nil, decodeAPIError(status, body)
	}

	var resp dto.HealthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding health response: %w", err)
	}
	return &resp, nil
}

// timeoutFor shortens the client timeout to the context deadline.
func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < c.timeout {
			return left
		}
	}
	return c.timeout
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		apiErr.Code = resp.Code
		apiErr.Message = resp.Message
		apiErr.RawResponse = resp.RawResponse
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP error! status: %d", status)
	}
	return apiErr
}
