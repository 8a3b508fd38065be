package logger

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// Middleware her isteğe request id atar ve tamamlandığında loglar.
// Handler'lar c.UserContext() üzerinden aynı alanlarla log yazabilir.
func Middleware(l *Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)

		ctx := l.WithFields(c.UserContext(), map[string]any{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
		})
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		ctx = l.WithFields(ctx, map[string]any{
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		l.Info(ctx, "request.complete")

		return err
	}
}
