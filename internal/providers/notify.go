package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NotifyClient publishes digest messages to a Slack-compatible incoming
// webhook. Publishing is the last pipeline step; only a 2xx from the webhook
// counts as delivered.
type NotifyClient struct {
	HTTP *http.Client

	// WebhookURL is the incoming-webhook endpoint.
	WebhookURL string
}

// NewNotifyClient constructs a NotifyClient.
func NewNotifyClient(webhookURL string, timeout time.Duration) *NotifyClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &NotifyClient{
		HTTP:       &http.Client{Timeout: timeout},
		WebhookURL: webhookURL,
	}
}

// Publish posts the message text to the webhook. Network errors and 5xx map
// to ErrUnreachable (transient, retried); 4xx maps to ErrRejected (the
// payload or the webhook itself is wrong, retrying cannot help).
func (c *NotifyClient) Publish(ctx context.Context, message string) error {
	if c.WebhookURL == "" {
		return fmt.Errorf("%w: webhook url not configured", ErrRejected)
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: empty message", ErrRejected)
	}

	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: webhook throttled", ErrUnreachable)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: webhook status %d", ErrUnreachable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

func (c *NotifyClient) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}
