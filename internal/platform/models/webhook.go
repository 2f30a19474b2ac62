package models

import (
	"errors"
	"fmt"
)

var (
	ErrWebhookNotFound      = errors.New("webhook not found")
	ErrSubscriptionNotFound = errors.New("webhook subscription not found")
	ErrLogNotFound          = errors.New("webhook log not found")
	ErrInvalidConfiguration = errors.New("invalid webhook configuration")
)

type Platform string

const (
	PlatformDiscord     Platform = "discord"
	PlatformSlack       Platform = "slack"
	PlatformTelegram    Platform = "telegram"
	PlatformGenericHTTP Platform = "generic_http"
)

func Platforms() []Platform {
	return []Platform{PlatformDiscord, PlatformSlack, PlatformTelegram, PlatformGenericHTTP}
}

func (p Platform) IsValid() bool {
	switch p {
	case PlatformDiscord, PlatformSlack, PlatformTelegram, PlatformGenericHTTP:
		return true
	}
	return false
}

type EventType string

const (
	EventTypeSeriesCreated      EventType = "series.created"
	EventTypeSeriesUpdated      EventType = "series.updated"
	EventTypeSeriesDeleted      EventType = "series.deleted"
	EventTypeSeriesStarted      EventType = "series.started"
	EventTypeSeriesClosed       EventType = "series.closed"
	EventTypeEventOpen          EventType = "event.open"
	EventTypeEventCompleted     EventType = "event.completed"
	EventTypeEventClosed        EventType = "event.closed"
	EventTypeEventStarted       EventType = "event.started"
	EventTypeRaceResultUploaded EventType = "event.result_uploaded"
	EventTypeDriverJoined       EventType = "event.driver.joined"
	EventTypeDriverLeft         EventType = "event.driver.left"
)

func EventTypes() []EventType {
	return []EventType{
		EventTypeSeriesCreated,
		EventTypeSeriesUpdated,
		EventTypeSeriesDeleted,
		EventTypeSeriesStarted,
		EventTypeSeriesClosed,
		EventTypeEventOpen,
		EventTypeEventCompleted,
		EventTypeEventClosed,
		EventTypeEventStarted,
		EventTypeRaceResultUploaded,
		EventTypeDriverJoined,
		EventTypeDriverLeft,
	}
}

func (e EventType) IsValid() bool {
	for _, known := range EventTypes() {
		if e == known {
			return true
		}
	}
	return false
}

// Webhook is a registered external destination: a target URL plus the platform
// that decides payload shape and outbound auth.
type Webhook struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	TargetURL string         `json:"target_url"`
	Platform  Platform       `json:"platform"`
	Secret    string         `json:"-"`
	Config    map[string]any `json:"config,omitempty"`
	Enabled   bool           `json:"enabled"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at,omitempty"`
}

// WebhookSubscription binds a webhook to one event type, optionally scoped to a
// specific resource. ResourceType and ResourceID are either both set (exact
// subscription) or both empty (general subscription for the event type).
type WebhookSubscription struct {
	ID           string    `json:"id"`
	WebhookID    string    `json:"webhook_id"`
	EventType    EventType `json:"event_type"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	CreatedAt    int64     `json:"created_at"`
	UpdatedAt    int64     `json:"updated_at,omitempty"`
}

// Validate checks the subscription's scope: a known event type, and
// ResourceType/ResourceID either both set or both empty.
func (s *WebhookSubscription) Validate() error {
	if !s.EventType.IsValid() {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidConfiguration, s.EventType)
	}
	if (s.ResourceType == "") != (s.ResourceID == "") {
		return fmt.Errorf("%w: resource_type and resource_id must be provided together", ErrInvalidConfiguration)
	}
	return nil
}

// WebhookLog records one delivery. HTTPStatus is nil until the first attempt;
// an attempted log with Succeeded=false is retryable. Logs are never deleted by
// the pipeline.
type WebhookLog struct {
	ID             string         `json:"id"`
	WebhookID      string         `json:"webhook_id"`
	SubscriptionID string         `json:"subscription_id,omitempty"`
	Payload        map[string]any `json:"payload"`
	HTTPStatus     *int           `json:"http_status,omitempty"`
	ResponseBody   string         `json:"response_body,omitempty"`
	Succeeded      bool           `json:"succeeded"`
	Timestamp      int64          `json:"timestamp"`
}

// Pending reports whether the log has never been attempted.
func (l *WebhookLog) Pending() bool {
	return l.HTTPStatus == nil
}

// Failed reports whether the log was attempted and did not succeed.
func (l *WebhookLog) Failed() bool {
	return l.HTTPStatus != nil && !l.Succeeded
}
