package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// StructuredLogger logs one line per request. An incoming X-Request-ID is
// kept so CLI and server logs can be correlated.
func StructuredLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Locals("requestID", requestID)
		c.Set("X-Request-ID", requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.IP()),
		}
		if userID, ok := c.Locals("userID").(string); ok && userID != "" {
			attrs = append(attrs, slog.String("user_id", userID))
		}

		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(c.Context(), slog.LevelError, "request error", attrs...)
		case status >= 500:
			logger.LogAttrs(c.Context(), slog.LevelError, "server error", attrs...)
		case status >= 400:
			logger.LogAttrs(c.Context(), slog.LevelWarn, "client error", attrs...)
		case c.Path() == "/health":
			logger.LogAttrs(c.Context(), slog.LevelDebug, "health check", attrs...)
		default:
			logger.LogAttrs(c.Context(), slog.LevelInfo, "request completed", attrs...)
		}

		return err
	}
}
