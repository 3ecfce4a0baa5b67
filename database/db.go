package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("unique constraint violated")
	ErrForeignKey = errors.New("foreign key constraint violated")
)

type DB struct {
	*sql.DB
}

func New(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// foreign keys are a per-connection pragma, so it goes in the DSN
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS drone_types (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			default_parts TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(user_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS manufacturers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(user_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS drones (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			type_id TEXT NOT NULL,
			start_date TEXT NOT NULL,
			photo TEXT,
			status TEXT NOT NULL DEFAULT 'ready',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (type_id) REFERENCES drone_types(id) ON DELETE RESTRICT
		)`,

		`CREATE TABLE IF NOT EXISTS parts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			drone_id TEXT NOT NULL,
			name TEXT NOT NULL,
			start_date TEXT NOT NULL,
			manufacturer_id TEXT,
			replacement_history TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (drone_id) REFERENCES drones(id) ON DELETE CASCADE,
			FOREIGN KEY (manufacturer_id) REFERENCES manufacturers(id) ON DELETE RESTRICT
		)`,

		`CREATE TABLE IF NOT EXISTS repairs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			drone_id TEXT NOT NULL,
			part_id TEXT,
			date TEXT NOT NULL,
			description TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (drone_id) REFERENCES drones(id) ON DELETE CASCADE,
			FOREIGN KEY (part_id) REFERENCES parts(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS practice_days (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			note TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(user_id, date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_drones_user_id ON drones(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_drones_type_id ON drones(type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parts_user_id ON parts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parts_drone_id ON parts(drone_id)`,
		`CREATE INDEX IF NOT EXISTS idx_parts_manufacturer_id ON parts(manufacturer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_repairs_user_id ON repairs(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_repairs_drone_id ON repairs(drone_id)`,
		`CREATE INDEX IF NOT EXISTS idx_repairs_part_id ON repairs(part_id)`,
		`CREATE INDEX IF NOT EXISTS idx_practice_days_user_date ON practice_days(user_id, date)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// WithTx runs fn in a transaction, committing when fn returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapError turns constraint violations into ErrDuplicate or ErrForeignKey.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", ErrForeignKey, err)
	}
	// statement level failures can report only the primary code
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY"):
		return fmt.Errorf("%w: %v", ErrForeignKey, err)
	case strings.Contains(msg, "UNIQUE"), strings.Contains(msg, "PRIMARY KEY"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
