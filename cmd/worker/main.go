// Command worker runs the webhook processor on a schedule, as an alternative
// to cron-driven invocations of the webhook CLI.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndy40/racing-pointsheet/internal/engine/notifications"
	"github.com/ndy40/racing-pointsheet/internal/pkg/logger"
	"github.com/ndy40/racing-pointsheet/internal/platform/config"
	"github.com/ndy40/racing-pointsheet/internal/platform/database"
	"github.com/ndy40/racing-pointsheet/internal/platform/repositories"
	"github.com/ndy40/racing-pointsheet/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	processor := notifications.NewProcessor(
		repositories.NewWebhookLogRepository(db),
		repositories.NewWebhookRepository(db),
		notifications.NewSender(),
	)

	interval := cfg.Webhooks.ProcessInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Dur("interval", interval).Msg("starting webhook worker")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("webhook worker stopped")
			return
		case <-ticker.C:
			workers.ProcessPendingWebhooks(ctx, processor, cfg.Webhooks)
			workers.RetryFailedWebhooks(ctx, processor, cfg.Webhooks)
		}
	}
}
