package handlers

import (
	"github.com/Yuki-gilty/drone-manager/app"
	"github.com/Yuki-gilty/drone-manager/middleware"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/gofiber/fiber/v2"
)

// Drone types

func ListDroneTypes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		types, err := a.Catalog.ListTypes(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, types)
	}
}

func GetDroneType(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dt, err := a.Catalog.GetType(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, dt)
	}
}

func CreateDroneType(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.DroneTypeInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		res, err := a.Catalog.CreateType(c.UserContext(), middleware.GetUserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return created(c, res)
	}
}

func UpdateDroneType(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch models.DroneTypePatch
		if err := parseBody(c, &patch); err != nil {
			return err
		}
		if err := a.Catalog.UpdateType(c.UserContext(), middleware.GetUserID(c), c.Params("id"), patch); err != nil {
			return respondError(c, err)
		}
		return message(c, "Drone type updated")
	}
}

func DeleteDroneType(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Catalog.DeleteType(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return message(c, "Drone type deleted")
	}
}

// Manufacturers

func ListManufacturers(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		makers, err := a.Catalog.ListManufacturers(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, makers)
	}
}

func GetManufacturer(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := a.Catalog.GetManufacturer(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, m)
	}
}

func CreateManufacturer(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.ManufacturerInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		res, err := a.Catalog.CreateManufacturer(c.UserContext(), middleware.GetUserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return created(c, res)
	}
}

func UpdateManufacturer(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch models.ManufacturerPatch
		if err := parseBody(c, &patch); err != nil {
			return err
		}
		if err := a.Catalog.UpdateManufacturer(c.UserContext(), middleware.GetUserID(c), c.Params("id"), patch); err != nil {
			return respondError(c, err)
		}
		return message(c, "Manufacturer updated")
	}
}

func DeleteManufacturer(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Catalog.DeleteManufacturer(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return message(c, "Manufacturer deleted")
	}
}
