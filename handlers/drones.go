package handlers

import (
	"github.com/Yuki-gilty/drone-manager/app"
	"github.com/Yuki-gilty/drone-manager/middleware"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/gofiber/fiber/v2"
)

// ListDrones returns the user's drones, optionally of one type
func ListDrones(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		drones, err := a.Drones.List(c.UserContext(), middleware.GetUserID(c), c.Query("type_id"))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, drones)
	}
}

func GetDrone(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		drone, err := a.Drones.Get(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, drone)
	}
}

// CreateDrone creates the drone with its type's default parts
func CreateDrone(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.DroneInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		res, err := a.Drones.Create(c.UserContext(), middleware.GetUserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return created(c, res)
	}
}

func UpdateDrone(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch models.DronePatch
		if err := parseBody(c, &patch); err != nil {
			return err
		}
		if err := a.Drones.Update(c.UserContext(), middleware.GetUserID(c), c.Params("id"), patch); err != nil {
			return respondError(c, err)
		}
		return message(c, "Drone updated")
	}
}

func DeleteDrone(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Drones.Delete(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return message(c, "Drone deleted")
	}
}

// DronePhoto redirects to a short-lived URL of the stored photo
func DronePhoto(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := a.Drones.PhotoURL(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Redirect(url, fiber.StatusFound)
	}
}
