// Package provision creates the hosted backend's schema: the tables the
// data layer reads and writes, their row level security policies and the
// username lookup used at sign-in.
package provision

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const migrateLockID int64 = 40417

// Open connects to Postgres. SQL is logged through logger at warn level.
func Open(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	gormLog := gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// Apply migrates the tables and runs every statement. It is safe to run
// repeatedly and concurrently; runs are serialized by an advisory lock.
func Apply(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	return withMigrationLock(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
			return fmt.Errorf("create pgcrypto extension: %w", err)
		}
		if err := tx.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		logger.Info("tables migrated", "count", len(Models()))

		return tx.Transaction(func(tx *gorm.DB) error {
			for _, stmt := range Statements() {
				if err := tx.Exec(stmt.SQL).Error; err != nil {
					return fmt.Errorf("%s: %w", stmt.Name, err)
				}
				logger.Debug("statement applied", "name", stmt.Name)
			}
			return nil
		})
	})
}

func withMigrationLock(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(context.Background(), conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db.WithContext(ctx))
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}
