package notifications

import "github.com/ndy40/racing-pointsheet/internal/platform/models"

// SlackFormatter renders the Slack incoming-webhook payload shape.
type SlackFormatter struct {
	Message string
}

func (f *SlackFormatter) FormatPayload(webhook *models.Webhook, payload map[string]any) map[string]any {
	return map[string]any{
		"text": messageContent(f.Message, webhook, payload),
	}
}
