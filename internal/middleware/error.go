package middleware

import (
	"errors"
	"net/http"

	"study-quiz/internal/domain"
	"study-quiz/internal/dto"
	"study-quiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler is a centralized error handling middleware
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.FromContext(c.UserContext())

		// Handle validation errors
		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			log.Warn("Validation errors occurred",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(validationErrs)),
			)
			fields := make([]dto.FieldError, len(validationErrs))
			for i, e := range validationErrs {
				fields[i] = dto.FieldError{Field: e.Field, Message: e.Message}
			}
			return c.Status(http.StatusBadRequest).JSON(dto.ValidationErrorResponse{
				Code:    string(domain.CodeValidation),
				Message: validationErrs.Error(),
				Errors:  fields,
			})
		}

		// Handle domain errors
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)

			log.Error("Domain error occurred",
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", statusCode),
				zap.Error(domainErr.Cause),
			)

			return c.Status(statusCode).JSON(dto.ErrorResponse{
				Code:        string(domainErr.Code),
				Message:     domainErr.Message,
				RawResponse: domainErr.RawResponse,
			})
		}

		// Handle fiber errors
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			code := "HTTP_ERROR"
			if fiberErr.Code == http.StatusBadRequest {
				code = string(domain.CodeInvalidInput)
			}
			return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{
				Code:    code,
				Message: fiberErr.Message,
			})
		}

		// Handle unknown errors
		log.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return c.Status(http.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    string(domain.CodeInternal),
			Message: "Internal server error",
		})
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeInvalidInput, domain.CodeValidation:
		return http.StatusBadRequest
	default:
		// configuration, model and parsing failures all surface as 500
		return http.StatusInternalServerError
	}
}
