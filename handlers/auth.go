package handlers

import (
	"time"

	"github.com/Yuki-gilty/drone-manager/app"
	"github.com/Yuki-gilty/drone-manager/middleware"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/gofiber/fiber/v2"
)

func setSessionCookie(c *fiber.Ctx, a *app.App, sess *models.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   a.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearSessionCookie(c *fiber.Ctx, a *app.App) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   a.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Register creates an account and logs it in
func Register(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		user, sess, err := a.Auth.Register(c.UserContext(), req)
		if err != nil {
			return respondError(c, err)
		}

		setSessionCookie(c, a, sess)
		a.Logger.Info("user registered", "user_id", user.ID)
		return created(c, fiber.Map{"message": "User registered", "user": user})
	}
}

func Login(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		user, sess, err := a.Auth.Login(c.UserContext(), req)
		if err != nil {
			return respondError(c, err)
		}

		setSessionCookie(c, a, sess)
		return success(c, fiber.Map{"message": "Login successful", "user": user})
	}
}

func Logout(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sess := middleware.GetSession(c); sess != nil {
			if err := a.Auth.Logout(c.UserContext(), sess.ID); err != nil {
				return respondError(c, err)
			}
		}
		clearSessionCookie(c, a)
		return message(c, "Logged out")
	}
}

// Me returns the logged-in user
func Me(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := a.Auth.Me(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, user)
	}
}
