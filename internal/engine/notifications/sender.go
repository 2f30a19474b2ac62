package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndy40/racing-pointsheet/internal/platform/models"
)

// signatureHeader carries the HMAC-SHA256 signature of the request body for
// generic HTTP endpoints configured with a secret.
const signatureHeader = "X-Pointsheet-Signature"

// maxResponseRead bounds how much of a response body the sender reads.
const maxResponseRead = 4096

// SendResult is the outcome of one delivery attempt that reached the target.
type SendResult struct {
	StatusCode int
	Body       string
}

// Succeeded reports whether the target accepted the delivery.
func (r *SendResult) Succeeded() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Sender performs the outbound HTTP call for a webhook delivery.
type Sender struct {
	client *http.Client
}

func NewSender() *Sender {
	return &Sender{client: &http.Client{}}
}

// Send posts the payload to the webhook's target URL with platform-appropriate
// auth headers, bounded by timeout. Network and timeout errors are returned to
// the caller; any HTTP response, success or not, is a SendResult.
//
// Discord is excluded from header auth: its secret lives in the target URL.
// All other platforms get an Authorization bearer header when a secret is set.
func (s *Sender) Send(ctx context.Context, webhook *models.Webhook, payload map[string]any, timeout time.Duration) (*SendResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.TargetURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if headers, ok := webhook.Config["headers"].(map[string]any); ok {
		for name, value := range headers {
			req.Header.Set(name, fmt.Sprint(value))
		}
	}

	if webhook.Secret != "" && webhook.Platform != models.PlatformDiscord {
		req.Header.Set("Authorization", "Bearer "+webhook.Secret)
	}
	if webhook.Secret != "" && webhook.Platform == models.PlatformGenericHTTP {
		req.Header.Set(signatureHeader, Sign(webhook.Secret, body))
	}

	log.Debug().Str("url", webhook.TargetURL).Str("platform", string(webhook.Platform)).Msg("sending webhook")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseRead))

	return &SendResult{StatusCode: resp.StatusCode, Body: string(respBody)}, nil
}
