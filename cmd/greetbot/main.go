package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"log/slog"

	"github.com/everyone-nodong/greetbot/bot"
	"github.com/everyone-nodong/greetbot/core/config"
	"github.com/everyone-nodong/greetbot/core/logger"
	"github.com/everyone-nodong/greetbot/core/telegram"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "greetbot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	start := time.Now()

	// Local overrides for development; absent file is fine.
	_ = godotenv.Overload(".env.local")

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Shutdown()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bot.New(cfg)
	opts := app.RunOptions()

	logger.Info(ctx, "app", "boot",
		slog.String("mode", cfg.Telegram.RunMode),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	)

	if err := telegram.Run(ctx, opts); err != nil {
		return fmt.Errorf("run bot: %w", err)
	}

	logger.Info(logger.Background(), "app", "shutdown",
		slog.String("status", "ok"),
	)
	return nil
}
