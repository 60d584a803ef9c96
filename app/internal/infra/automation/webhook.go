package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	dom "example.com/mystic-prints/app/internal/domain/workflow"
)

// WebhookClient posts trigger payloads to automation webhooks. Any response
// from the webhook counts as delivered; its status is only logged.
type WebhookClient struct {
	http   *http.Client
	logger *zap.Logger
}

func NewWebhookClient(timeout time.Duration, logger *zap.Logger) *WebhookClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookClient{http: &http.Client{Timeout: timeout}, logger: logger}
}

func (c *WebhookClient) Trigger(ctx context.Context, webhookURL string, payload dom.TriggerPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 300 {
		c.logger.Warn("workflow webhook answered with non-2xx status",
			zap.String("webhook", webhookURL),
			zap.Int("status", resp.StatusCode))
	}
	return nil
}
