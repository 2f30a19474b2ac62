package workers

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndy40/racing-pointsheet/internal/engine/notifications"
	"github.com/ndy40/racing-pointsheet/internal/platform/config"
)

// ProcessPendingWebhooks runs one delivery pass over pending logs, guarded by
// the shared processor lock so a worker and the CLI cannot double-send.
func ProcessPendingWebhooks(ctx context.Context, processor *notifications.Processor, cfg config.WebhooksConfig) {
	lock, err := notifications.AcquireLock(cfg.LockFile)
	if err != nil {
		if errors.Is(err, notifications.ErrLockHeld) {
			log.Warn().Msg("worker: skipping run, another processor holds the lock")
			return
		}
		log.Error().Err(err).Msg("worker: failed to acquire processor lock")
		return
	}
	defer lock.Release()

	success, failure := processor.ProcessPending(ctx, processLimit(cfg), sendTimeout(cfg), false)
	if success+failure > 0 {
		log.Info().Int("succeeded", success).Int("failed", failure).Msg("worker: processed pending webhooks")
	}
}

// RetryFailedWebhooks retries attempted-but-unsuccessful logs under the same
// lock discipline.
func RetryFailedWebhooks(ctx context.Context, processor *notifications.Processor, cfg config.WebhooksConfig) {
	lock, err := notifications.AcquireLock(cfg.LockFile)
	if err != nil {
		if errors.Is(err, notifications.ErrLockHeld) {
			log.Warn().Msg("worker: skipping retry run, another processor holds the lock")
			return
		}
		log.Error().Err(err).Msg("worker: failed to acquire processor lock")
		return
	}
	defer lock.Release()

	retryLimit := cfg.RetryLimit
	if retryLimit <= 0 {
		retryLimit = 10
	}
	success, failure := processor.RetryFailed(ctx, retryLimit, sendTimeout(cfg))
	if success+failure > 0 {
		log.Info().Int("succeeded", success).Int("failed", failure).Msg("worker: retried failed webhooks")
	}
}

func processLimit(cfg config.WebhooksConfig) int {
	if cfg.ProcessLimit > 0 {
		return cfg.ProcessLimit
	}
	return 50
}

func sendTimeout(cfg config.WebhooksConfig) time.Duration {
	if cfg.SendTimeout > 0 {
		return cfg.SendTimeout
	}
	return 10 * time.Second
}
