package notifications

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
)

// Formatter renders a generic event payload into the request body expected by
// a specific platform.
type Formatter interface {
	FormatPayload(webhook *models.Webhook, payload map[string]any) map[string]any
}

// ErrUnsupportedFormatter is returned when neither a (platform, event) entry
// nor a platform default exists in the registry.
var ErrUnsupportedFormatter = fmt.Errorf("unsupported webhook platform or event type")

type formatterKey struct {
	platform models.Platform
	event    string
}

// Registry maps (platform, event name) pairs to formatters, with a required
// default formatter per platform. All entries are registered at construction,
// so coverage is verifiable at startup rather than at delivery time.
type Registry struct {
	formatters map[formatterKey]Formatter
	defaults   map[models.Platform]Formatter
}

// NewRegistry builds the registry with every built-in formatter installed.
func NewRegistry() *Registry {
	r := &Registry{
		formatters: map[formatterKey]Formatter{},
		defaults:   map[models.Platform]Formatter{},
	}

	r.defaults[models.PlatformDiscord] = &DiscordFormatter{}
	r.defaults[models.PlatformSlack] = &SlackFormatter{}
	r.defaults[models.PlatformTelegram] = &TelegramFormatter{}
	r.defaults[models.PlatformGenericHTTP] = &GenericFormatter{}

	for event, message := range cannedMessages {
		r.register(models.PlatformDiscord, event, &DiscordFormatter{Message: message})
		r.register(models.PlatformSlack, event, &SlackFormatter{Message: message})
		r.register(models.PlatformTelegram, event, &TelegramFormatter{Message: message})
	}

	return r
}

func (r *Registry) register(platform models.Platform, event string, f Formatter) {
	r.formatters[formatterKey{platform: platform, event: event}] = f
}

// CreateFormatter resolves the formatter for a platform and event name. It
// prefers the exact (platform, event) entry, falls back to the platform
// default, and fails with ErrUnsupportedFormatter when neither exists.
func (r *Registry) CreateFormatter(platform models.Platform, event string) (Formatter, error) {
	if f, ok := r.formatters[formatterKey{platform: platform, event: event}]; ok {
		return f, nil
	}
	if f, ok := r.defaults[platform]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: platform %q, event %q", ErrUnsupportedFormatter, platform, event)
}

// cannedMessages are the per-event notification texts used when a webhook has
// no content template of its own.
var cannedMessages = map[string]string{
	"SeriesCreated":      "🏁 New racing series created!",
	"SeriesUpdated":      "📝 Racing series updated!",
	"SeriesDeleted":      "🗑️ Racing series deleted!",
	"SeriesStarted":      "🏁 Racing series has started!",
	"SeriesClosed":       "🏁 Racing series has closed!",
	"DriverJoinedEvent":  "🏎️ Driver has joined an event!",
	"DriverLeftEvent":    "🚪 Driver has left an event!",
	"EventScheduleAdded": "📅 New event scheduled!",
	"RaceResultUploaded": "🏆 Race results uploaded!",
	"EventDeleted":       "🗑️ Event deleted!",
}

var templateField = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// renderTemplate interpolates {field} placeholders against the payload.
// It reports false when any referenced field is missing, so callers can fall
// back to a canned message.
func renderTemplate(template string, payload map[string]any) (string, bool) {
	complete := true
	rendered := templateField.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := payload[key]
		if !ok {
			complete = false
			return match
		}
		return fmt.Sprint(value)
	})
	if !complete {
		return "", false
	}
	return rendered, true
}

// messageContent builds the notification text: webhook template first, then
// the formatter's canned message, then a generic fallback naming the event.
func messageContent(message string, webhook *models.Webhook, payload map[string]any) string {
	if template, ok := webhook.Config["content_template"].(string); ok && template != "" {
		if rendered, ok := renderTemplate(template, payload); ok {
			return rendered
		}
	}
	if message != "" {
		return message
	}
	return fmt.Sprintf("New event: %s", eventName(payload))
}

func eventName(payload map[string]any) string {
	if name, ok := payload["event_type"].(string); ok && name != "" {
		return name
	}
	return "Unknown"
}

// payloadFields returns the payload's scalar fields in a stable order,
// skipping the event_type tag, nils, and nested structures.
func payloadFields(payload map[string]any) [][2]string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var fields [][2]string
	for _, key := range keys {
		if key == "event_type" {
			continue
		}
		value := payload[key]
		if value == nil {
			continue
		}
		switch value.(type) {
		case map[string]any, []any:
			continue
		}
		fields = append(fields, [2]string{key, fmt.Sprint(value)})
	}
	return fields
}
