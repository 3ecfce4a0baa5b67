package app

import (
	"log/slog"
	"time"

	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/services"
	"github.com/Yuki-gilty/drone-manager/session"
	"github.com/Yuki-gilty/drone-manager/storage"
	"github.com/Yuki-gilty/drone-manager/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Repo         *database.Repository
	SessionStore session.Store
	Validator    *validator.Validator
	Logger       *slog.Logger

	Auth    *services.AuthService
	Drones  *services.DroneService
	Catalog *services.CatalogService
	Logbook *services.LogbookService
	Import  *services.ImportService

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
	SessionTTL    time.Duration
}

// New creates a new App instance with all dependencies. photos may be nil.
func New(repo *database.Repository, sessionStore session.Store, photos storage.PhotoStore, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	return &App{
		Repo:         repo,
		SessionStore: sessionStore,
		Validator:    v,
		Logger:       logger,

		Auth:    services.NewAuthService(repo, sessionStore, v, logger),
		Drones:  services.NewDroneService(repo, photos, v, logger),
		Catalog: services.NewCatalogService(repo, v),
		Logbook: services.NewLogbookService(repo, v),
		Import:  services.NewImportService(repo, logger),

		SessionTTL: session.DefaultTTL,
	}
}
