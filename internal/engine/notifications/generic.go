package notifications

import "github.com/ndy40/racing-pointsheet/internal/platform/models"

// GenericFormatter passes the event payload through unchanged for endpoints
// that consume the raw event shape.
type GenericFormatter struct{}

func (f *GenericFormatter) FormatPayload(webhook *models.Webhook, payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = value
	}
	return out
}
