package handler

import (
	"study-quiz/internal/dto"
	"study-quiz/internal/logger"
	"study-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz
// @Description Builds a prompt from the subject and optional study content, asks the model for questions and returns the repaired quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Quiz options"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /generate-quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		logger.FromContext(c.UserContext()).Warn("Invalid quiz request body", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.service.GenerateQuiz(c.UserContext(), req.ToDomain())
	if err != nil {
		return err // rendered by middleware.ErrorHandler
	}

	return c.JSON(dto.NewGenerateQuizResponse(result))
}

// Health godoc
// @Summary Health check
// @Description Reports liveness and whether a model is configured
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *QuizHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:        "ok",
		LLMConfigured: h.service.Configured(),
	})
}

// RegisterRoutes mounts the JSON API on router.
func (h *QuizHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/generate-quiz", h.GenerateQuiz)
	router.Post("/generateQuiz", h.GenerateQuiz)
	router.Get("/health", h.Health)
}
