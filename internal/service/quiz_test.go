package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"study-quiz/internal/config"
	"study-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testQuizConfig() config.QuizConfig {
	return config.QuizConfig{
		Language:        "Korean",
		MaxQuestions:    10,
		SingleTopicPool: 3,
	}
}

func userInputRequest(n int) domain.QuizRequest {
	return domain.QuizRequest{
		Subject:        "데이터베이스",
		Mode:           domain.ModeUserInput,
		LearnedContent: "트랜잭션은 ACID 특성을 가진다.",
		NumQuestions:   n,
		QuestionType:   domain.QuestionTypeAny,
	}
}

func topicOnlyRequest(n int) domain.QuizRequest {
	return domain.QuizRequest{
		Subject:      "소프트웨어 공학",
		Mode:         domain.ModeTopicOnly,
		NumQuestions: n,
		QuestionType: domain.QuestionTypeShortAnswer,
	}
}

func replyWithQuestions(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id":%d,"type":"shortAnswer","question":"Q%d","answer":"A%d"}`, 50+i, i+1, i+1)
	}
	return `{"summary":"S","questions":[` + strings.Join(items, ",") + `]}`
}

func TestQuizService_FencedReplySingleQuestion(t *testing.T) {
	gen := new(MockTextGenerator)
	raw := "```json {\"summary\":\"S\",\"questions\":[{\"id\":9,\"type\":\"shortAnswer\",\"question\":\"Q\",\"answer\":\"A\"}]}```"
	gen.On("Generate", mock.Anything, mock.AnythingOfType("string")).Return(raw, nil).Once()

	svc := NewQuizService(gen, testQuizConfig())
	result, err := svc.GenerateQuiz(context.Background(), userInputRequest(1))

	require.NoError(t, err)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, 1, result.Questions[0].ID)
	assert.Equal(t, "A", result.Questions[0].Answer)
	assert.Equal(t, "S", result.Summary)
	gen.AssertExpectations(t)
}

func TestQuizService_ProseReplyIsParsingError(t *testing.T) {
	gen := new(MockTextGenerator)
	raw := "Sorry, I cannot help with that request."
	gen.On("Generate", mock.Anything, mock.Anything).Return(raw, nil)

	svc := NewQuizService(gen, testQuizConfig())
	_, err := svc.GenerateQuiz(context.Background(), userInputRequest(2))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeParsingError, domainErr.Code)
	assert.Equal(t, raw, domainErr.RawResponse)
}

func TestQuizService_MalformedJSONIsParsingError(t *testing.T) {
	gen := new(MockTextGenerator)
	raw := `Here you go: {"summary": "S", "questions": [ {"id": 1,, } ] }`
	gen.On("Generate", mock.Anything, mock.Anything).Return(raw, nil)

	svc := NewQuizService(gen, testQuizConfig())
	_, err := svc.GenerateQuiz(context.Background(), userInputRequest(2))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeParsingError, domainErr.Code)
	assert.Equal(t, raw, domainErr.RawResponse)
}

func TestQuizService_TopicOnlySinglePicksFromPool(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Write 3 questions")
	})).Return(replyWithQuestions(3), nil)

	svc := NewQuizService(gen, testQuizConfig())
	candidates := []string{"Q1", "Q2", "Q3"}

	for i := 0; i < 20; i++ {
		result, err := svc.GenerateQuiz(context.Background(), topicOnlyRequest(1))
		require.NoError(t, err)
		require.Len(t, result.Questions, 1)
		assert.Equal(t, 1, result.Questions[0].ID)
		assert.Contains(t, candidates, result.Questions[0].Question)
	}
}

func TestQuizService_TopicOnlySingleUsesPicker(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(replyWithQuestions(4), nil)

	var poolSize int
	svc := NewQuizService(gen, testQuizConfig(), WithPicker(func(n int) int {
		poolSize = n
		return n - 1
	}))
	result, err := svc.GenerateQuiz(context.Background(), topicOnlyRequest(1))

	require.NoError(t, err)
	assert.Equal(t, 4, poolSize, "pick draws from every returned question")
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "Q4", result.Questions[0].Question)
	assert.Equal(t, 1, result.Questions[0].ID)
}

func TestQuizService_TopicOnlySingleBelowPoolTruncates(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(replyWithQuestions(2), nil)

	svc := NewQuizService(gen, testQuizConfig(), WithPicker(func(n int) int {
		t.Fatal("picker must not run when the pool is short")
		return 0
	}))
	result, err := svc.GenerateQuiz(context.Background(), topicOnlyRequest(1))

	require.NoError(t, err)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "Q1", result.Questions[0].Question)
}

func TestQuizService_ShortfallReturnsWhatExists(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(replyWithQuestions(2), nil)

	svc := NewQuizService(gen, testQuizConfig())
	result, err := svc.GenerateQuiz(context.Background(), userInputRequest(5))

	require.NoError(t, err)
	require.Len(t, result.Questions, 2)
	assert.Equal(t, 1, result.Questions[0].ID)
	assert.Equal(t, 2, result.Questions[1].ID)
}

func TestQuizService_TruncatesToRequestedPrefix(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(replyWithQuestions(5), nil)

	svc := NewQuizService(gen, testQuizConfig())
	result, err := svc.GenerateQuiz(context.Background(), userInputRequest(3))

	require.NoError(t, err)
	require.Len(t, result.Questions, 3)
	for i, q := range result.Questions {
		assert.Equal(t, i+1, q.ID)
		assert.Equal(t, fmt.Sprintf("Q%d", i+1), q.Question)
	}
}

func TestQuizService_MissingQuestionsDegradesToEmpty(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(`{"summary":"only a summary"}`, nil)

	svc := NewQuizService(gen, testQuizConfig())
	result, err := svc.GenerateQuiz(context.Background(), userInputRequest(2))

	require.NoError(t, err)
	assert.Equal(t, "only a summary", result.Summary)
	assert.NotNil(t, result.Questions)
	assert.Empty(t, result.Questions)
}

func TestQuizService_TopicOnlyMissingSummaryIsEmpty(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`{"questions":[{"type":"shortAnswer","question":"Q","answer":"A"}]}`, nil)

	svc := NewQuizService(gen, testQuizConfig())
	req := topicOnlyRequest(2)
	result, err := svc.GenerateQuiz(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "", result.Summary)
	assert.Len(t, result.Questions, 1)
}

func TestQuizService_ValidationFailsBeforeModelCall(t *testing.T) {
	requests := map[string]domain.QuizRequest{
		"missing subject":       {Mode: domain.ModeTopicOnly, NumQuestions: 1, QuestionType: domain.QuestionTypeAny},
		"missing mode":          {Subject: "s", NumQuestions: 1, QuestionType: domain.QuestionTypeAny},
		"missing numQuestions":  {Subject: "s", Mode: domain.ModeTopicOnly, QuestionType: domain.QuestionTypeAny},
		"missing questionType":  {Subject: "s", Mode: domain.ModeTopicOnly, NumQuestions: 1},
		"blank learned content": {Subject: "s", Mode: domain.ModeUserInput, LearnedContent: "  ", NumQuestions: 1, QuestionType: domain.QuestionTypeAny},
	}

	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			gen := new(MockTextGenerator)
			svc := NewQuizService(gen, testQuizConfig())

			_, err := svc.GenerateQuiz(context.Background(), req)

			var verrs domain.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
			gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestQuizService_ValidUserInputNeverValidationError(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(replyWithQuestions(1), nil)
	svc := NewQuizService(gen, testQuizConfig())

	for _, qt := range []domain.QuestionType{domain.QuestionTypeAny, domain.QuestionTypeMultipleChoice, domain.QuestionTypeShortAnswer} {
		for n := 1; n <= 10; n++ {
			req := userInputRequest(n)
			req.QuestionType = qt
			_, err := svc.GenerateQuiz(context.Background(), req)
			var verrs domain.ValidationErrors
			assert.False(t, errors.As(err, &verrs), "type=%s n=%d", qt, n)
		}
	}
}

func TestQuizService_NotConfigured(t *testing.T) {
	svc := NewQuizService(nil, testQuizConfig())
	assert.False(t, svc.Configured())

	_, err := svc.GenerateQuiz(context.Background(), userInputRequest(1))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeConfiguration, domainErr.Code)
	assert.Equal(t, missingCredentialMessage, domainErr.Message)
}

func TestQuizService_NotConfiguredCustomReason(t *testing.T) {
	svc := NewQuizService(nil, testQuizConfig(), WithConfigurationProblem("unknown LLM provider"))
	_, err := svc.GenerateQuiz(context.Background(), userInputRequest(1))
	assert.EqualError(t, err, "unknown LLM provider")
}

func TestQuizService_ServiceErrorKeepsMessage(t *testing.T) {
	gen := new(MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	svc := NewQuizService(gen, testQuizConfig())
	_, err := svc.GenerateQuiz(context.Background(), userInputRequest(1))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeLLMServiceError, domainErr.Code)
	assert.Equal(t, "quota exceeded", domainErr.Message)
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestQuizService_StrictSchemaRejectsBadShape(t *testing.T) {
	gen := new(MockTextGenerator)
	raw := `{"questions":[{"type":"essay","question":"Q","answer":"A"}]}`
	gen.On("Generate", mock.Anything, mock.Anything).Return(raw, nil)

	cfg := testQuizConfig()
	cfg.StrictSchema = true
	svc := NewQuizService(gen, cfg)
	_, err := svc.GenerateQuiz(context.Background(), userInputRequest(1))

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeParsingError, domainErr.Code)
	assert.Equal(t, raw, domainErr.RawResponse)
}
