package setup

import (
	"errors"
	"log/slog"
	"time"

	"github.com/Yuki-gilty/drone-manager/app"
	"github.com/Yuki-gilty/drone-manager/config"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/gofiber/fiber/v2"
)

// NewFiberApp creates and configures a new Fiber application
func NewFiberApp(cfg *config.Config, logger *slog.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		ReadTimeout:           time.Second * 15,
		WriteTimeout:          time.Second * 15,
		IdleTimeout:           time.Second * 60,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          CustomErrorHandler(logger),
		ReadBufferSize:        8192,
		// inline drone photos travel as base64 in JSON bodies
		BodyLimit: 10 * 1024 * 1024,
	})
}

// CustomErrorHandler returns a custom error handler for Fiber
func CustomErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		requestID := ""
		if id, ok := c.Locals("requestID").(string); ok {
			requestID = id
		}

		logger.Error("request failed",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(fiber.Map{
			"error":      message,
			"code":       remote.Code(remote.KindFromStatus(code)),
			"request_id": requestID,
		})
	}
}

// New builds the whole HTTP server for application.
func New(cfg *config.Config, application *app.App) *fiber.App {
	fiberApp := NewFiberApp(cfg, application.Logger)
	ApplyMiddleware(fiberApp, cfg, application.Logger)
	RegisterRoutes(fiberApp, application)
	return fiberApp
}
