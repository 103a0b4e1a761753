package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxRecordingBytes caps a single recording download. Support calls are
// minutes long; anything beyond this is a misbehaving provider.
const maxRecordingBytes = 64 << 20

// RecordingClient downloads call recordings from the telephony provider.
// The provider exposes recordings behind HTTP basic auth using the account
// API key/token pair.
type RecordingClient struct {
	// HTTP is the client used for downloads. Callers may override it for
	// custom transports; the zero value falls back to a timeout-bounded client.
	HTTP *http.Client

	// APIKey and APIToken are the basic-auth credentials. Empty values skip
	// the auth header, which is valid for pre-signed recording URLs.
	APIKey   string
	APIToken string
}

// NewRecordingClient constructs a RecordingClient with a bounded HTTP client.
func NewRecordingClient(key, token string, timeout time.Duration) *RecordingClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RecordingClient{
		HTTP:     &http.Client{Timeout: timeout},
		APIKey:   key,
		APIToken: token,
	}
}

// Download fetches the recording at url and returns its raw bytes.
// 404 maps to ErrNotFound, 401/403 to ErrAuthFailed, 429 to ErrRateLimited
// and 5xx to ErrUnavailable so the caller can tell permanent from transient.
func (c *RecordingClient) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build recording request: %w", err)
	}
	if c.APIKey != "" {
		req.SetBasicAuth(c.APIKey, c.APIToken)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recording: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrAuthFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: recording status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected recording status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordingBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read recording body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty recording body", ErrUnavailable)
	}
	if len(data) > maxRecordingBytes {
		return nil, fmt.Errorf("recording exceeds %d bytes", maxRecordingBytes)
	}
	return data, nil
}

func (c *RecordingClient) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 30 * time.Second}
}
