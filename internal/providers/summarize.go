package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Summary is the remote summarizer's verdict on a transcript. Tone and
// IssueType are optional enrichments; Text is the digest itself.
type Summary struct {
	Text      string `json:"summary"`
	Tone      string `json:"tone,omitempty"`
	IssueType string `json:"issue_type,omitempty"`
}

// SummarizeClient calls an optional HTTP summarization service. The pipeline
// treats every error from this client as a degradation signal, not a failure:
// it falls back to the local extractive summary and still publishes.
type SummarizeClient struct {
	HTTP *http.Client

	// URL is the summarizer endpoint. An empty URL means "unconfigured" and
	// Summarize returns ErrUnavailable immediately.
	URL string

	// APIKey, when set, is sent as a bearer token.
	APIKey string
}

// NewSummarizeClient constructs a SummarizeClient.
func NewSummarizeClient(url, apiKey string, timeout time.Duration) *SummarizeClient {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &SummarizeClient{
		HTTP:   &http.Client{Timeout: timeout},
		URL:    url,
		APIKey: apiKey,
	}
}

// Summarize submits a transcript and returns the remote summary.
func (c *SummarizeClient) Summarize(ctx context.Context, transcript string) (Summary, error) {
	if c.URL == "" {
		return Summary{}, fmt.Errorf("%w: summarizer not configured", ErrUnavailable)
	}

	payload, err := json.Marshal(map[string]string{"transcript": transcript})
	if err != nil {
		return Summary{}, fmt.Errorf("encode summarize request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return Summary{}, fmt.Errorf("build summarize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Summary{}, ErrRateLimited
	case resp.StatusCode >= 500:
		return Summary{}, fmt.Errorf("%w: summarize status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Summary{}, fmt.Errorf("unexpected summarize status %d", resp.StatusCode)
	}

	var out Summary
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Summary{}, fmt.Errorf("decode summarize response: %w", err)
	}
	out.Text = strings.TrimSpace(out.Text)
	if out.Text == "" {
		return Summary{}, fmt.Errorf("%w: summarizer returned empty text", ErrUnavailable)
	}
	return out, nil
}

func (c *SummarizeClient) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 45 * time.Second}
}
