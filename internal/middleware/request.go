package middleware

import (
	"time"

	"study-quiz/internal/logger"
	"study-quiz/internal/util"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	// HeaderRequestID carries the request id in both directions.
	HeaderRequestID = "X-Request-ID"
	// LocalsRequestID is the fiber locals key holding the request id.
	LocalsRequestID = "request_id"
)

// RequestID tags every request with a ULID, or the id the caller sent, and
// puts a logger carrying it into the request context.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = util.NewULID()
		}
		c.Locals(LocalsRequestID, id)
		c.Set(HeaderRequestID, id)

		scoped := logger.Get().With(zap.String("request_id", id))
		c.SetUserContext(logger.NewContext(c.UserContext(), scoped))
		return c.Next()
	}
}

// RequestLogger is a middleware that logs HTTP requests
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		// Process request. Errors are rendered here so the logged status
		// is the one sent.
		err := c.Next()
		if err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logger.FromContext(c.UserContext()).Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return nil
	}
}
