// Command webhook drains and retries webhook delivery logs.
//
// Subcommands:
//
//	process  send pending notifications
//	list     show recent delivery logs
//	retry    re-send one failed delivery or a batch of them
//
// Every subcommand takes an exclusive pid-file lock so two invocations cannot
// process the same pending entries concurrently.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndy40/racing-pointsheet/internal/engine/notifications"
	"github.com/ndy40/racing-pointsheet/internal/pkg/logger"
	"github.com/ndy40/racing-pointsheet/internal/platform/config"
	"github.com/ndy40/racing-pointsheet/internal/platform/database"
	"github.com/ndy40/racing-pointsheet/internal/platform/repositories"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "process":
		os.Exit(runProcess(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "retry":
		os.Exit(runRetry(os.Args[2:]))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: webhook <process|list|retry> [flags]")
}

func runProcess(args []string) int {
	flags := flag.NewFlagSet("process", flag.ExitOnError)
	configPath := flags.String("config", "configs/config.yaml", "Path to config file")
	limit := flags.Int("limit", 50, "Maximum number of webhooks to process")
	timeout := flags.Int("timeout", 10, "HTTP request timeout in seconds")
	dryRun := flags.Bool("dry-run", false, "Don't actually send webhooks, just log what would be sent")
	flags.Parse(args)

	db, cfg, err := setup(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}
	defer db.Close()

	lock, err := notifications.AcquireLock(cfg.Webhooks.LockFile)
	if err != nil {
		log.Warn().Err(err).Msg("could not acquire processor lock")
		return 1
	}
	defer lock.Release()

	processor := newProcessor(db)
	success, failure := processor.ProcessPending(context.Background(), *limit, time.Duration(*timeout)*time.Second, *dryRun)
	if success+failure > 0 {
		log.Info().
			Int("total", success+failure).
			Int("succeeded", success).
			Int("failed", failure).
			Msg("processed webhooks")
	}
	return 0
}

func runList(args []string) int {
	flags := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := flags.String("config", "configs/config.yaml", "Path to config file")
	limit := flags.Int("limit", 20, "Maximum number of logs to show")
	succeededFlag := flags.String("succeeded", "", "Filter by success status (true/false)")
	webhookID := flags.String("webhook-id", "", "Filter by webhook ID")
	days := flags.Int("days", 1, "Show logs from the last N days")
	flags.Parse(args)

	var succeeded *bool
	if *succeededFlag != "" {
		value, err := strconv.ParseBool(*succeededFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --succeeded value %q\n", *succeededFlag)
			return 2
		}
		succeeded = &value
	}

	db, cfg, err := setup(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}
	defer db.Close()

	lock, err := notifications.AcquireLock(cfg.Webhooks.LockFile)
	if err != nil {
		log.Warn().Err(err).Msg("could not acquire processor lock")
		return 1
	}
	defer lock.Release()

	logs, err := repositories.NewWebhookLogRepository(db).List(*limit, succeeded, *webhookID, *days)
	if err != nil {
		log.Error().Err(err).Msg("failed to list webhook logs")
		return 1
	}
	if len(logs) == 0 {
		fmt.Println("No webhook logs found.")
		return 0
	}

	fmt.Printf("Found %d webhook logs:\n", len(logs))
	for _, entry := range logs {
		status := "❌"
		if entry.Succeeded {
			status = "✅"
		}
		httpStatus := "N/A"
		if entry.HTTPStatus != nil {
			httpStatus = strconv.Itoa(*entry.HTTPStatus)
		}
		timestamp := time.Unix(entry.Timestamp, 0).Format("2006-01-02 15:04:05")
		fmt.Printf("%s [%s] ID: %s HTTP: %s\n", status, timestamp, entry.ID, httpStatus)
	}
	return 0
}

func runRetry(args []string) int {
	flags := flag.NewFlagSet("retry", flag.ExitOnError)
	configPath := flags.String("config", "configs/config.yaml", "Path to config file")
	logID := flags.String("id", "", "Retry a specific webhook log by ID")
	retryAll := flags.Bool("all", false, "Retry all failed webhooks")
	limit := flags.Int("limit", 10, "Maximum number of webhooks to retry")
	timeout := flags.Int("timeout", 10, "HTTP request timeout in seconds")
	flags.Parse(args)

	if (*logID != "") == *retryAll {
		fmt.Fprintln(os.Stderr, "Please specify either --id or --all")
		return 2
	}

	db, cfg, err := setup(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}
	defer db.Close()

	lock, err := notifications.AcquireLock(cfg.Webhooks.LockFile)
	if err != nil {
		log.Warn().Err(err).Msg("could not acquire processor lock")
		return 1
	}
	defer lock.Release()

	processor := newProcessor(db)
	sendTimeout := time.Duration(*timeout) * time.Second

	if *logID != "" {
		if processor.Retry(context.Background(), *logID, sendTimeout) {
			fmt.Printf("Webhook %s retry succeeded\n", *logID)
		} else {
			fmt.Printf("Webhook %s retry failed\n", *logID)
		}
		return 0
	}

	success, failure := processor.RetryFailed(context.Background(), *limit, sendTimeout)
	if success+failure > 0 {
		fmt.Printf("Retried %d webhooks: %d succeeded, %d failed\n", success+failure, success, failure)
	} else {
		fmt.Println("No failed webhook logs to retry.")
	}
	return 0
}

func setup(configPath string) (*sql.DB, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, cfg, nil
}

func newProcessor(db *sql.DB) *notifications.Processor {
	return notifications.NewProcessor(
		repositories.NewWebhookLogRepository(db),
		repositories.NewWebhookRepository(db),
		notifications.NewSender(),
	)
}
