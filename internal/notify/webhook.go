package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/macspp/lead-intake/internal/leads"
)

const maxErrorBody = 4 << 10

// WebhookChannel posts the submission as JSON to a generic receiver.
type WebhookChannel struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

// NewWebhookChannel creates a channel posting each lead to url.
func NewWebhookChannel(url string, httpClient *http.Client) *WebhookChannel {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookChannel{
		url:        strings.TrimSpace(url),
		httpClient: httpClient,
		now:        time.Now,
	}
}

// WithClock overrides the time source used for the payload timestamp.
func (c *WebhookChannel) WithClock(now func() time.Time) *WebhookChannel {
	if now != nil {
		c.now = now
	}
	return c
}

// Name implements Channel.
func (c *WebhookChannel) Name() string { return ChannelWebhook }

type webhookPayload struct {
	*leads.Submission
	Timestamp string `json:"timestamp"`
}

// Deliver posts the submission fields plus a delivery timestamp in the
// UTC-5 zone. Any non-2xx response is a failure.
func (c *WebhookChannel) Deliver(ctx context.Context, sub *leads.Submission) error {
	if c.url == "" {
		return fmt.Errorf("%w: webhook url", ErrChannelNotConfigured)
	}
	payload := webhookPayload{
		Submission: sub,
		Timestamp:  leads.FormatTimestamp(c.now()),
	}
	if err := postJSON(ctx, c.httpClient, c.url, nil, payload); err != nil {
		return fmt.Errorf("notify: webhook: %w", err)
	}
	return nil
}

// postJSON sends payload and treats anything outside 2xx as an error that
// carries the (truncated) response body.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

var _ Channel = (*WebhookChannel)(nil)
