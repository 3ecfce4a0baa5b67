package handlers

import (
	"time"

	"github.com/Yuki-gilty/drone-manager/app"
	"github.com/Yuki-gilty/drone-manager/middleware"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/gofiber/fiber/v2"
)

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ServerTime reports the server clock, optionally in ?timezone=.
func ServerTime(c *fiber.Ctx) error {
	timezone := c.Query("timezone", "UTC")

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	now := time.Now().In(loc)

	return c.JSON(fiber.Map{
		"timestamp": now.Unix(),
		"timezone":  timezone,
		"iso":       now.Format(time.RFC3339),
		"date":      now.Format(models.DateLayout),
	})
}

// ImportSnapshot copies a local-storage export into the account
func ImportSnapshot(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var snap models.Snapshot
		if err := parseBody(c, &snap); err != nil {
			return err
		}
		result, err := a.Import.Import(c.UserContext(), middleware.GetUserID(c), snap)
		if err != nil {
			return respondError(c, err)
		}
		return success(c, fiber.Map{"message": "Import completed", "result": result})
	}
}
