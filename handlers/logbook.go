package handlers

import (
	"github.com/Yuki-gilty/drone-manager/app"
	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/middleware"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/gofiber/fiber/v2"
)

// Parts

func ListParts(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := database.PartFilter{DroneID: c.Query("drone_id"), ManufacturerID: c.Query("manufacturer_id")}
		parts, err := a.Logbook.ListParts(c.UserContext(), middleware.GetUserID(c), f)
		if err != nil {
			return respondError(c, err)
		}
		return success(c, parts)
	}
}

func GetPart(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		part, err := a.Logbook.GetPart(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, part)
	}
}

func CreatePart(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.PartInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		res, err := a.Logbook.CreatePart(c.UserContext(), middleware.GetUserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return created(c, res)
	}
}

func UpdatePart(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch models.PartPatch
		if err := parseBody(c, &patch); err != nil {
			return err
		}
		if err := a.Logbook.UpdatePart(c.UserContext(), middleware.GetUserID(c), c.Params("id"), patch); err != nil {
			return respondError(c, err)
		}
		return message(c, "Part updated")
	}
}

func DeletePart(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Logbook.DeletePart(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return message(c, "Part deleted")
	}
}

// Repairs

func ListRepairs(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := database.RepairFilter{DroneID: c.Query("drone_id"), PartID: c.Query("part_id")}
		repairs, err := a.Logbook.ListRepairs(c.UserContext(), middleware.GetUserID(c), f)
		if err != nil {
			return respondError(c, err)
		}
		return success(c, repairs)
	}
}

func GetRepair(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := a.Logbook.GetRepair(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, rep)
	}
}

func CreateRepair(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.RepairInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		res, err := a.Logbook.CreateRepair(c.UserContext(), middleware.GetUserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return created(c, res)
	}
}

func UpdateRepair(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch models.RepairPatch
		if err := parseBody(c, &patch); err != nil {
			return err
		}
		if err := a.Logbook.UpdateRepair(c.UserContext(), middleware.GetUserID(c), c.Params("id"), patch); err != nil {
			return respondError(c, err)
		}
		return message(c, "Repair updated")
	}
}

func DeleteRepair(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Logbook.DeleteRepair(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return message(c, "Repair deleted")
	}
}

// Practice days

func ListPracticeDays(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days, err := a.Logbook.ListPracticeDays(c.UserContext(), middleware.GetUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, days)
	}
}

func GetPracticeDay(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pd, err := a.Logbook.GetPracticeDay(c.UserContext(), middleware.GetUserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return success(c, pd)
	}
}

func CreatePracticeDay(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in models.PracticeDayInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		res, err := a.Logbook.CreatePracticeDay(c.UserContext(), middleware.GetUserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return created(c, res)
	}
}

func UpdatePracticeDay(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch models.PracticeDayPatch
		if err := parseBody(c, &patch); err != nil {
			return err
		}
		if err := a.Logbook.UpdatePracticeDay(c.UserContext(), middleware.GetUserID(c), c.Params("id"), patch); err != nil {
			return respondError(c, err)
		}
		return message(c, "Practice day updated")
	}
}

func DeletePracticeDay(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Logbook.DeletePracticeDay(c.UserContext(), middleware.GetUserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return message(c, "Practice day deleted")
	}
}
