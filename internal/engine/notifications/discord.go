package notifications

import (
	"fmt"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
)

// discordEmbedColor is the accent color of auto-generated embeds.
const discordEmbedColor = 0x00BFFF

// DiscordFormatter renders the Discord webhook payload shape: a content line,
// a username, and optionally a list of embeds. Message, when set, is the
// canned text for one event type; the zero value is the platform default.
type DiscordFormatter struct {
	Message string
}

func (f *DiscordFormatter) FormatPayload(webhook *models.Webhook, payload map[string]any) map[string]any {
	username := "PSR"
	if name, ok := webhook.Config["username"].(string); ok && name != "" {
		username = name
	}

	discordPayload := map[string]any{
		"content":    messageContent(f.Message, webhook, payload),
		"username":   username,
		"avatar_url": webhook.Config["avatar_url"],
	}

	if embeds := f.createEmbeds(webhook, payload); embeds != nil {
		discordPayload["embeds"] = embeds
	}

	return discordPayload
}

// createEmbeds uses embeds from the webhook config when present, otherwise
// builds one embed whose fields are the payload's scalar values.
func (f *DiscordFormatter) createEmbeds(webhook *models.Webhook, payload map[string]any) []any {
	if configured, ok := webhook.Config["embeds"].([]any); ok {
		return configured
	}

	var fields []any
	for _, pair := range payloadFields(payload) {
		fields = append(fields, map[string]any{
			"name":   pair[0],
			"value":  pair[1],
			"inline": true,
		})
	}
	if fields == nil {
		return nil
	}

	return []any{map[string]any{
		"title":  fmt.Sprintf("Event: %s", eventName(payload)),
		"color":  discordEmbedColor,
		"fields": fields,
	}}
}
