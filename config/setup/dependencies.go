package setup

import (
	"context"
	"log/slog"
	"time"

	"github.com/Yuki-gilty/drone-manager/app"
	"github.com/Yuki-gilty/drone-manager/config"
	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/session"
	"github.com/Yuki-gilty/drone-manager/storage"
)

// InitDatabase initializes the SQLite database and runs migrations
func InitDatabase(dbPath string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", dbPath)
	return db, nil
}

// Resources are the long-lived connections opened by InitApp.
type Resources struct {
	DB    *database.DB
	Redis *session.RedisStore
}

// InitSessionStore picks Redis when REDIS_ADDR is set and the in-process
// store otherwise. The memory store's cleanup goroutine stops with ctx.
func InitSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, *session.RedisStore, error) {
	if cfg.RedisAddr != "" {
		store := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		logger.Info("session store initialized with redis", "addr", cfg.RedisAddr)
		return store, store, nil
	}

	store := session.NewMemoryStore(cfg.SessionTTL)
	store.StartCleanupRoutine(ctx, time.Hour)
	logger.Info("session store initialized in memory")
	return store, nil, nil
}

// InitPhotoStore connects the object store, or returns nil when none is
// configured and photos stay inline.
func InitPhotoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.PhotoStore, error) {
	if cfg.MinioEndpoint == "" {
		logger.Info("no object store configured, photos stay inline")
		return nil, nil
	}
	store, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		return nil, err
	}
	logger.Info("photo store initialized", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
	return store, nil
}

// InitApp initializes the application with all dependencies
func InitApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, *Resources, error) {
	db, err := InitDatabase(cfg.DBPath, logger)
	if err != nil {
		return nil, nil, err
	}
	res := &Resources{DB: db}

	sessionStore, redisStore, err := InitSessionStore(ctx, cfg, logger)
	if err != nil {
		Shutdown(res, logger)
		return nil, nil, err
	}
	res.Redis = redisStore

	photos, err := InitPhotoStore(ctx, cfg, logger)
	if err != nil {
		Shutdown(res, logger)
		return nil, nil, err
	}

	application := app.New(database.NewRepository(db), sessionStore, photos, logger)
	application.SecureCookies = cfg.IsProduction()
	application.SessionTTL = cfg.SessionTTL
	logger.Info("application initialized with dependency injection")

	return application, res, nil
}

// Shutdown closes everything InitApp opened
func Shutdown(res *Resources, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if res.Redis != nil {
		if err := res.Redis.Close(); err != nil {
			logger.Warn("redis close failed", "error", err)
		}
		logger.Info("redis session store closed")
	}

	if res.DB != nil {
		res.DB.Close()
		logger.Info("database closed")
	}
}
