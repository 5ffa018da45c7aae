package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/music_player"
	"github.com/urfave/cli/v2"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/jukebot
var version = "dev"

func main() {
	// .env is optional and never overrides the real environment
	envErr := godotenv.Load()

	// Configure JSON logging
	slog.SetDefault(newLogger(os.Getenv("LOG_LEVEL")))

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		slog.Error("failed to load .env file", "error", envErr)
		os.Exit(1)
	}

	app := &cli.App{
		Name:    "jukebot",
		Usage:   "Discord music bot",
		Version: version,
		Action:  run,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Connect to Discord and serve slash commands",
				Action: run,
			},
			{
				Name:   "sweep",
				Usage:  "Remove stale downloaded audio files from the temp directory and exit",
				Action: sweep,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application exited with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: bot.ParseLogLevel(level),
	}))
}

func run(_ *cli.Context) error {
	slog.Info("starting jukebot", "version", version)

	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Create and configure bot
	b := bot.NewBot(cfg)
	b.LoadModules()

	// Start bot
	if err := b.Start(); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	slog.Info("completed bot shutdown")
	return nil
}

func sweep(_ *cli.Context) error {
	cfg, err := music_player.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	removed, err := cfg.NewSweeper().SweepOnce(time.Now())
	if err != nil {
		return fmt.Errorf("failed to sweep %s: %w", cfg.TempDir, err)
	}

	slog.Info("sweep complete", "dir", cfg.TempDir, "removed", removed)
	return nil
}
