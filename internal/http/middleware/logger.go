package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"deskqueue/internal/logger"
)

// Logger logs one entry per request with request_id, method, path, status and
// latency_ms. Server errors are logged at error level.
func Logger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []zap.Field{
			zap.String("request_id", RequestIDFromCtx(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
		}
		l := logger.WithTrace(c.UserContext(), log)
		if status >= fiber.StatusInternalServerError {
			l.Error("http_request", append(fields, zap.Error(err))...)
		} else {
			l.Info("http_request", fields...)
		}

		return err
	}
}
