package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/Yuki-gilty/drone-manager/cmd/dronectl/ui"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/joho/godotenv"
)

func main() {
	demo := flag.Bool("demo", false, "Use an in-memory store with sample data (nothing is saved)")
	verbose := flag.Bool("verbose", false, "Log requests and failures to stderr")
	flag.Usage = usage
	flag.Parse()

	_ = godotenv.Load() // Ignore error if .env doesn't exist

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *demo, logger, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err))
		if errors.Is(err, remote.ErrAuthRequired) {
			fmt.Fprintln(os.Stderr, ui.DimStyle.Render("Run dronectl login USERNAME first."))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, demo bool, logger *slog.Logger, args []string) error {
	c := &cli{out: os.Stdout, in: os.Stdin, now: time.Now}

	if demo {
		b, err := openDemo(ctx, logger)
		if err != nil {
			return err
		}
		c.b = b
		return c.run(ctx, args)
	}

	dir, err := configDir()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}
	if c.weekStart, err = cfg.weekday(); err != nil {
		return err
	}
	b, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	c.b = b

	runErr := c.run(ctx, args)
	// tokens may have been refreshed or cleared by the command
	if err := saveSession(cfg.dir, b.account.Saved()); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, ui.HeaderStyle.Render("dronectl")+" manages your drones, parts, repairs and practice days")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: dronectl [--demo] [--verbose] COMMAND [ARGS]")
	fmt.Fprintln(out)

	rows := make([][]string, 0)
	for _, cmd := range commandTable() {
		rows = append(rows, []string{cmd.name, ui.DimStyle.Render(cmd.args), cmd.summary})
	}
	fmt.Fprintln(out, ui.Table([]string{"COMMAND", "ARGS", "DESCRIPTION"}, rows))
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.DimStyle.Render("Config: ~/.config/dronectl/config.yaml (DRONECTL_BACKEND, DRONECTL_API_URL, SUPABASE_URL, SUPABASE_ANON_KEY override it)"))
}
