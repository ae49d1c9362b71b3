package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ytcourier/internal/bot"
	"ytcourier/internal/daemon"
	"ytcourier/internal/download"
	"ytcourier/internal/history"
	"ytcourier/internal/logging"
	"ytcourier/internal/media/ytdlp"
	"ytcourier/internal/session"
	"ytcourier/internal/telegram"
	"ytcourier/internal/whitelist"
)

// newRunCommand runs the bot loop in the foreground, sharing the instance
// lock with ytcourierd.
func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			wl, err := whitelist.Open(cfg.Paths.WhitelistPath, cfg.Telegram.AdminID, logger)
			if err != nil {
				return fmt.Errorf("open whitelist: %w", err)
			}

			journal, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history db: %w", err)
			}
			defer journal.Close()

			client, err := telegram.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("connect to telegram: %w", err)
			}

			fetcher := ytdlp.New(cfg, logger)
			orchestrator := download.New(cfg, fetcher, client, journal, logger)
			router := bot.New(wl, session.NewStore(), orchestrator, client, logger)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return daemon.New(cfg, logger).Run(ctx, func(ctx context.Context) error {
				return client.Listen(ctx, router)
			})
		},
	}
}
