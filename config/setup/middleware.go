package setup

import (
	"log/slog"
	"time"

	"github.com/Yuki-gilty/drone-manager/config"
	"github.com/Yuki-gilty/drone-manager/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ApplyMiddleware applies all global middleware to the Fiber app
func ApplyMiddleware(app *fiber.App, cfg *config.Config, logger *slog.Logger) {
	app.Use(
		recover.New(),
		middleware.StructuredLogger(logger),
		middleware.Security(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept,X-Request-ID",
			AllowCredentials: cfg.CORSOrigins != "*",
			MaxAge:           86400,
		}),
		limiter.New(limiter.Config{
			Max:        300,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: rateLimited("Rate limit exceeded"),
		}),
	)
}

// userLimiter limits authenticated API traffic per account.
func userLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        200,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID := middleware.GetUserID(c); userID != "" {
				return "user:" + userID
			}
			return c.IP()
		},
		LimitReached: rateLimited("Rate limit exceeded for your account"),
	})
}

func rateLimited(msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": msg,
			"code":  "rate_limited",
		})
	}
}
