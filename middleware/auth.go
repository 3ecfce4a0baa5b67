package middleware

import (
	"log/slog"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/Yuki-gilty/drone-manager/session"
	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the session id.
const SessionCookie = "session_id"

// AuthRequired rejects requests without a live session and stores the
// session's user in the request locals.
func AuthRequired(sessionStore session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookie)
		if sessionID == "" {
			return unauthorized(c)
		}

		sess, err := sessionStore.Get(c.UserContext(), sessionID)
		if err != nil {
			slog.Error("session lookup failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
				"code":  remote.Code(remote.ErrServer),
			})
		}
		if sess == nil {
			c.ClearCookie(SessionCookie)
			return unauthorized(c)
		}

		if err := sessionStore.Touch(c.UserContext(), sess); err != nil {
			slog.Warn("session touch failed", "error", err)
		}

		c.Locals("userID", sess.UserID)
		c.Locals("username", sess.Username)
		c.Locals("session", sess)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "authentication required",
		"code":  remote.Code(remote.ErrAuthRequired),
	})
}

func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return ""
	}
	return userID
}

func GetSession(c *fiber.Ctx) *models.Session {
	sess, _ := c.Locals("session").(*models.Session)
	return sess
}
