package setup

import (
	"github.com/Yuki-gilty/drone-manager/app"
	"github.com/Yuki-gilty/drone-manager/handlers"
	"github.com/Yuki-gilty/drone-manager/middleware"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	// Public routes
	fiberApp.Get("/health", handlers.Health)
	fiberApp.Get("/api/time", handlers.ServerTime)
	fiberApp.Post("/api/auth/register", handlers.Register(application))
	fiberApp.Post("/api/auth/login", handlers.Login(application))

	// Protected API routes
	api := fiberApp.Group("/api", middleware.AuthRequired(application.SessionStore), userLimiter())

	api.Post("/auth/logout", handlers.Logout(application))
	api.Get("/auth/me", handlers.Me(application))

	api.Get("/drones", handlers.ListDrones(application))
	api.Post("/drones", handlers.CreateDrone(application))
	api.Get("/drones/:id", handlers.GetDrone(application))
	api.Put("/drones/:id", handlers.UpdateDrone(application))
	api.Delete("/drones/:id", handlers.DeleteDrone(application))
	api.Get("/drones/:id/photo", handlers.DronePhoto(application))

	api.Get("/parts", handlers.ListParts(application))
	api.Post("/parts", handlers.CreatePart(application))
	api.Get("/parts/:id", handlers.GetPart(application))
	api.Put("/parts/:id", handlers.UpdatePart(application))
	api.Delete("/parts/:id", handlers.DeletePart(application))

	api.Get("/repairs", handlers.ListRepairs(application))
	api.Post("/repairs", handlers.CreateRepair(application))
	api.Get("/repairs/:id", handlers.GetRepair(application))
	api.Put("/repairs/:id", handlers.UpdateRepair(application))
	api.Delete("/repairs/:id", handlers.DeleteRepair(application))

	api.Get("/drone-types", handlers.ListDroneTypes(application))
	api.Post("/drone-types", handlers.CreateDroneType(application))
	api.Get("/drone-types/:id", handlers.GetDroneType(application))
	api.Put("/drone-types/:id", handlers.UpdateDroneType(application))
	api.Delete("/drone-types/:id", handlers.DeleteDroneType(application))

	api.Get("/manufacturers", handlers.ListManufacturers(application))
	api.Post("/manufacturers", handlers.CreateManufacturer(application))
	api.Get("/manufacturers/:id", handlers.GetManufacturer(application))
	api.Put("/manufacturers/:id", handlers.UpdateManufacturer(application))
	api.Delete("/manufacturers/:id", handlers.DeleteManufacturer(application))

	api.Get("/practice-days", handlers.ListPracticeDays(application))
	api.Post("/practice-days", handlers.CreatePracticeDay(application))
	api.Get("/practice-days/:id", handlers.GetPracticeDay(application))
	api.Put("/practice-days/:id", handlers.UpdatePracticeDay(application))
	api.Delete("/practice-days/:id", handlers.DeletePracticeDay(application))

	api.Post("/migrate/import", handlers.ImportSnapshot(application))
}
