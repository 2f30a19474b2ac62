package notifications

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
	"github.com/ndy40/racing-pointsheet/internal/platform/repositories"
)

// Dispatcher turns a domain event into pending delivery log entries, one per
// matching subscription. Sending happens separately, via the Processor.
type Dispatcher struct {
	webhooks      *repositories.WebhookRepository
	subscriptions *repositories.WebhookSubscriptionRepository
	logs          *repositories.WebhookLogRepository
	registry      *Registry
}

func NewDispatcher(
	webhooks *repositories.WebhookRepository,
	subscriptions *repositories.WebhookSubscriptionRepository,
	logs *repositories.WebhookLogRepository,
	registry *Registry,
) *Dispatcher {
	return &Dispatcher{
		webhooks:      webhooks,
		subscriptions: subscriptions,
		logs:          logs,
		registry:      registry,
	}
}

// Dispatch resolves the subscriptions for an event and creates one pending
// WebhookLog per subscription whose webhook exists and is enabled. Resource-
// scoped subscriptions are found first; general subscriptions serve as a
// fallback only when no tiered match exists. A formatter failure for one
// subscription does not stop delivery-log creation for its siblings.
func (d *Dispatcher) Dispatch(evt models.DomainEvent) error {
	eventType, resourceType, resourceID, ok := eventRoute(evt)
	if !ok {
		return fmt.Errorf("no webhook routing for event %q", evt.Kind())
	}

	payload := EventPayload(evt)

	subs, err := d.subscriptions.FindByEventType(eventType, resourceType, resourceID)
	if err != nil {
		return fmt.Errorf("resolve subscriptions for %s: %w", eventType, err)
	}
	if len(subs) == 0 {
		subs, err = d.subscriptions.FindDefaultSubscriptions()
		if err != nil {
			return fmt.Errorf("resolve default subscriptions: %w", err)
		}
	}

	for _, sub := range subs {
		webhook, err := d.webhooks.GetByID(sub.WebhookID)
		if err != nil {
			if !errors.Is(err, models.ErrWebhookNotFound) {
				log.Error().Err(err).Str("webhook_id", sub.WebhookID).Msg("failed to load webhook")
			}
			continue
		}
		if !webhook.Enabled {
			continue
		}

		formatter, err := d.registry.CreateFormatter(webhook.Platform, evt.Kind())
		if err != nil {
			log.Error().Err(err).
				Str("webhook_id", webhook.ID).
				Str("subscription_id", sub.ID).
				Msg("failed to format webhook payload")
			continue
		}

		entry := &models.WebhookLog{
			WebhookID:      webhook.ID,
			SubscriptionID: sub.ID,
			Payload:        formatter.FormatPayload(webhook, payload),
		}
		if err := d.logs.Create(entry); err != nil {
			log.Error().Err(err).
				Str("webhook_id", webhook.ID).
				Str("subscription_id", sub.ID).
				Msg("failed to create webhook log")
		}
	}

	return nil
}
