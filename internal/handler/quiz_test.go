package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"study-quiz/internal/config"
	"study-quiz/internal/domain"
	"study-quiz/internal/dto"
	"study-quiz/internal/handler"
	"study-quiz/internal/middleware"
	"study-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQuizService is a mock implementation of service.QuizService
type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) GenerateQuiz(ctx context.Context, req domain.QuizRequest) (*domain.QuizResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*domain.QuizResult)
	return result, args.Error(1)
}

func (m *MockQuizService) Configured() bool {
	return m.Called().Bool(0)
}

// countingGenerator returns a canned reply and counts calls.
type countingGenerator struct {
	reply string
	calls atomic.Int32
}

func (g *countingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	return g.reply, nil
}

func (g *countingGenerator) ModelID() string { return "counting" }

var quizConfig = config.QuizConfig{Language: "Korean", MaxQuestions: 10, SingleTopicPool: 3}

func setupApp(svc service.QuizService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())
	handler.NewQuizHandler(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestQuizHandler_GenerateQuiz(t *testing.T) {
	svc := new(MockQuizService)
	want := &domain.QuizResult{
		Summary: "S",
		Questions: []domain.Question{
			{ID: 1, Type: domain.QuestionTypeMultipleChoice, Question: "Q", Options: []string{"a", "b"}, Answer: "a"},
		},
	}
	expected := domain.QuizRequest{
		Subject:        "데이터베이스",
		Mode:           domain.ModeUserInput,
		LearnedContent: "normal forms",
		NumQuestions:   1,
		QuestionType:   domain.QuestionTypeAny,
	}
	svc.On("GenerateQuiz", mock.Anything, expected).Return(want, nil)

	for _, path := range []string{"/api/generate-quiz", "/api/generateQuiz"} {
		resp, body := postJSON(t, setupApp(svc), path, map[string]any{
			"subject":        "데이터베이스",
			"mode":           "userInput",
			"learnedContent": "normal forms",
			"numQuestions":   1,
			"questionType":   "any",
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		var got dto.GenerateQuizResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, want, got.ToDomain())
	}
	svc.AssertExpectations(t)
}

func TestQuizHandler_GenerateQuiz_BadBody(t *testing.T) {
	svc := new(MockQuizService)
	resp, body := postJSON(t, setupApp(svc), "/api/generate-quiz", `{"subject":`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var got dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "INVALID_INPUT", got.Code)
	svc.AssertNotCalled(t, "GenerateQuiz", mock.Anything, mock.Anything)
}

func TestQuizHandler_GenerateQuiz_ServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		wantRaw string
	}{
		{"configuration", domain.NewConfigurationError("Server configuration error: API key not found."), "Server configuration error: API key not found.", ""},
		{"model", domain.NewLLMServiceError(errors.New("429 quota")), "429 quota", ""},
		{"parsing", domain.NewParsingError("hello there", errors.New("no json")), "Failed to process the AI response (Parsing Error)", "hello there"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockQuizService)
			svc.On("GenerateQuiz", mock.Anything, mock.Anything).Return(nil, tt.err)

			resp, body := postJSON(t, setupApp(svc), "/api/generate-quiz", map[string]any{"subject": "x"})

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			var got dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.Equal(t, tt.wantRaw, got.RawResponse)
		})
	}
}

func TestQuizHandler_MissingFieldsRejectedBeforeModelCall(t *testing.T) {
	full := map[string]any{
		"subject":      "데이터베이스",
		"mode":         "topicOnly",
		"numQuestions": 2,
		"questionType": "any",
	}
	for _, field := range []string{"subject", "mode", "numQuestions", "questionType"} {
		t.Run(field, func(t *testing.T) {
			gen := &countingGenerator{reply: `{"questions":[]}`}
			app := setupApp(service.NewQuizService(gen, quizConfig))

			body := map[string]any{}
			for k, v := range full {
				if k != field {
					body[k] = v
				}
			}
			resp, data := postJSON(t, app, "/api/generate-quiz", body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var got dto.ValidationErrorResponse
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Contains(t, got.Message, field)
			assert.Equal(t, int32(0), gen.calls.Load())
		})
	}
}

func TestQuizHandler_EndToEndFencedReply(t *testing.T) {
	gen := &countingGenerator{reply: "Sure!\n```json\n{\"summary\":\"S\",\"questions\":[{\"id\":9,\"type\":\"shortAnswer\",\"question\":\"Q\",\"answer\":\"A\"}]}\n```"}
	app := setupApp(service.NewQuizService(gen, quizConfig))

	resp, data := postJSON(t, app, "/api/generate-quiz", map[string]any{
		"subject":        "데이터베이스",
		"mode":           "userInput",
		"learnedContent": "content",
		"numQuestions":   1,
		"questionType":   "any",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.GenerateQuizResponse
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Questions, 1)
	assert.Equal(t, 1, got.Questions[0].ID)
	assert.Equal(t, "A", got.Questions[0].Answer)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestQuizHandler_EndToEndProseReply(t *testing.T) {
	gen := &countingGenerator{reply: "I cannot make a quiz today."}
	app := setupApp(service.NewQuizService(gen, quizConfig))

	resp, data := postJSON(t, app, "/api/generate-quiz", map[string]any{
		"subject":      "데이터베이스",
		"mode":         "topicOnly",
		"numQuestions": 2,
		"questionType": "any",
	})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var got dto.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "PARSING_ERROR", got.Code)
	assert.Equal(t, "I cannot make a quiz today.", got.RawResponse)
}

func TestQuizHandler_NotConfigured(t *testing.T) {
	app := setupApp(service.NewQuizService(nil, quizConfig))

	resp, data := postJSON(t, app, "/api/generate-quiz", map[string]any{"subject": "x"})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var got dto.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Server configuration error: API key not found.", got.Message)
}

func TestQuizHandler_Health(t *testing.T) {
	svc := new(MockQuizService)
	svc.On("Configured").Return(true)

	resp, err := setupApp(svc).Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, dto.HealthResponse{Status: "ok", LLMConfigured: true}, got)
}
