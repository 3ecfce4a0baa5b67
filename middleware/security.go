package middleware

import "github.com/gofiber/fiber/v2"

// Security sets headers for a JSON API. Drone photos may be data URIs or
// presigned object-store URLs, so img-src allows both.
func Security() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Set("Content-Security-Policy", "default-src 'none'; img-src 'self' data: https:; frame-ancestors 'none'")
		return c.Next()
	}
}
