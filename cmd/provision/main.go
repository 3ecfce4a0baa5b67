package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Yuki-gilty/drone-manager/provision"
	"github.com/joho/godotenv"
)

func main() {
	envFile := flag.String("env", ".env", "Path to an env file with DATABASE_URL")
	verbose := flag.Bool("verbose", false, "Log every applied statement")
	flag.Parse()

	_ = godotenv.Load(*envFile) // Ignore error if the file doesn't exist

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Error("DATABASE_URL is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := provision.Open(dsn, logger)
	if err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := provision.Apply(ctx, db, logger); err != nil {
		logger.Error("provisioning failed", "error", err)
		os.Exit(1)
	}
	logger.Info("schema is up to date")
}
