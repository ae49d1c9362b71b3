package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ytcourier/internal/bot"
	"ytcourier/internal/config"
	"ytcourier/internal/daemon"
	"ytcourier/internal/download"
	"ytcourier/internal/history"
	"ytcourier/internal/logging"
	"ytcourier/internal/media/ytdlp"
	"ytcourier/internal/session"
	"ytcourier/internal/telegram"
	"ytcourier/internal/whitelist"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A missing .env is fine; the token may come from the environment.
	_ = godotenv.Load()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	wl, err := whitelist.Open(cfg.Paths.WhitelistPath, cfg.Telegram.AdminID, logger)
	if err != nil {
		logger.Error("open whitelist", logging.Error(err))
		return
	}

	journal, err := history.Open(cfg)
	if err != nil {
		logger.Error("open history db", logging.Error(err))
		return
	}
	defer journal.Close()

	client, err := telegram.New(cfg, logger)
	if err != nil {
		logger.Error("connect to telegram", logging.Error(err))
		return
	}

	fetcher := ytdlp.New(cfg, logger)
	orchestrator := download.New(cfg, fetcher, client, journal, logger)
	router := bot.New(wl, session.NewStore(), orchestrator, client, logger)

	d := daemon.New(cfg, logger)
	if err := d.Run(ctx, func(ctx context.Context) error {
		return client.Listen(ctx, router)
	}); err != nil {
		logger.Error("daemon exited", logging.Error(err))
	}
}
