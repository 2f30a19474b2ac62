package notifications

import "github.com/ndy40/racing-pointsheet/internal/platform/models"

// TelegramFormatter renders the Telegram sendMessage payload shape. The chat
// id comes from the webhook config; without it Telegram rejects the request,
// which surfaces on the delivery log like any other failed send.
type TelegramFormatter struct {
	Message string
}

func (f *TelegramFormatter) FormatPayload(webhook *models.Webhook, payload map[string]any) map[string]any {
	telegramPayload := map[string]any{
		"text": messageContent(f.Message, webhook, payload),
	}
	if chatID, ok := webhook.Config["chat_id"]; ok {
		telegramPayload["chat_id"] = chatID
	}
	return telegramPayload
}
