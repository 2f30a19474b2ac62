package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
	"github.com/ndy40/racing-pointsheet/internal/platform/repositories"
)

// Processor drains pending delivery logs and retries failed ones. Entries are
// handled strictly sequentially; each outcome is written back to its log
// immediately after the HTTP call, so a crash mid-batch leaves at most the
// in-flight entry unresolved.
type Processor struct {
	logs     *repositories.WebhookLogRepository
	webhooks *repositories.WebhookRepository
	sender   *Sender
}

func NewProcessor(logs *repositories.WebhookLogRepository, webhooks *repositories.WebhookRepository, sender *Sender) *Processor {
	return &Processor{logs: logs, webhooks: webhooks, sender: sender}
}

// ProcessPending sends up to limit never-attempted logs. Logs whose webhook is
// missing or disabled are skipped without an attempt. A send error is recorded
// on the entry (status 0, error text) and counted as a failure; it never stops
// the rest of the batch. With dryRun set, intended sends are only logged.
func (p *Processor) ProcessPending(ctx context.Context, limit int, timeout time.Duration, dryRun bool) (successCount, failureCount int) {
	pending, err := p.logs.FindPending(limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load pending webhook logs")
		return 0, 0
	}
	if len(pending) == 0 {
		log.Info().Msg("no pending webhook notifications found")
		return 0, 0
	}

	log.Info().Int("count", len(pending)).Msg("found pending webhook notifications")

	for _, entry := range pending {
		webhook, err := p.webhooks.GetByID(entry.WebhookID)
		if err != nil {
			if errors.Is(err, models.ErrWebhookNotFound) {
				log.Warn().Str("log_id", entry.ID).Str("webhook_id", entry.WebhookID).Msg("webhook not found for log")
			} else {
				log.Error().Err(err).Str("log_id", entry.ID).Msg("failed to load webhook for log")
			}
			continue
		}
		if !webhook.Enabled {
			log.Info().Str("webhook_id", webhook.ID).Msg("skipping disabled webhook")
			continue
		}

		log.Info().
			Str("log_id", entry.ID).
			Str("webhook_id", webhook.ID).
			Str("platform", string(webhook.Platform)).
			Msg("processing webhook log")

		if dryRun {
			log.Info().Str("url", webhook.TargetURL).Msg("dry run: would send webhook")
			continue
		}

		if p.attempt(ctx, entry, webhook, timeout) {
			successCount++
		} else {
			failureCount++
		}
	}

	return successCount, failureCount
}

// Retry re-sends one log entry regardless of its current state, as long as its
// webhook exists and is enabled. It returns true iff the attempt succeeded;
// the log is not mutated when the webhook is missing or disabled.
func (p *Processor) Retry(ctx context.Context, logID string, timeout time.Duration) bool {
	entry, err := p.logs.GetByID(logID)
	if err != nil {
		log.Warn().Err(err).Str("log_id", logID).Msg("webhook log not found")
		return false
	}

	webhook, err := p.webhooks.GetByID(entry.WebhookID)
	if err != nil {
		log.Warn().Err(err).Str("log_id", entry.ID).Str("webhook_id", entry.WebhookID).Msg("webhook not found for log")
		return false
	}
	if !webhook.Enabled {
		log.Info().Str("webhook_id", webhook.ID).Msg("skipping disabled webhook")
		return false
	}

	log.Info().Str("log_id", entry.ID).Msg("retrying webhook log")
	return p.attempt(ctx, entry, webhook, timeout)
}

// RetryFailed retries up to limit attempted-but-unsuccessful logs and returns
// the aggregate (success, failure) counts.
func (p *Processor) RetryFailed(ctx context.Context, limit int, timeout time.Duration) (successCount, failureCount int) {
	failed, err := p.logs.FindFailed(limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load failed webhook logs")
		return 0, 0
	}
	if len(failed) == 0 {
		log.Info().Msg("no failed webhook logs to retry")
		return 0, 0
	}

	log.Info().Int("count", len(failed)).Msg("retrying webhook logs")

	for _, entry := range failed {
		if p.Retry(ctx, entry.ID, timeout) {
			successCount++
		} else {
			failureCount++
		}
	}

	return successCount, failureCount
}

// attempt performs one send and persists its outcome on the log entry.
func (p *Processor) attempt(ctx context.Context, entry *models.WebhookLog, webhook *models.Webhook, timeout time.Duration) bool {
	result, err := p.sender.Send(ctx, webhook, entry.Payload, timeout)
	if err != nil {
		log.Error().Err(err).Str("log_id", entry.ID).Msg("error sending webhook")
		if updateErr := p.logs.UpdateError(entry.ID, err); updateErr != nil {
			log.Error().Err(updateErr).Str("log_id", entry.ID).Msg("failed to record webhook error")
		}
		return false
	}

	succeeded := result.Succeeded()
	if err := p.logs.UpdateResponse(entry.ID, result.StatusCode, result.Body, succeeded); err != nil {
		log.Error().Err(err).Str("log_id", entry.ID).Msg("failed to record webhook response")
	}

	if succeeded {
		log.Info().Str("log_id", entry.ID).Int("status", result.StatusCode).Msg("webhook sent")
	} else {
		log.Warn().Str("log_id", entry.ID).Int("status", result.StatusCode).Msg("webhook failed")
	}
	return succeeded
}
