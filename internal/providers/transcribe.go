package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultTranscribeURL is the hosted speech-to-text endpoint.
const defaultTranscribeURL = "https://api.deepgram.com/v1/listen"

// TranscribeClient converts recording audio into text via the Deepgram
// pre-recorded audio API.
type TranscribeClient struct {
	// HTTP performs the request. Transcription of a long call can take tens
	// of seconds, so the constructor default is generous.
	HTTP *http.Client

	// APIKey is the provider token, sent as "Authorization: Token <key>".
	APIKey string

	// BaseURL overrides the endpoint, used by tests and self-hosted setups.
	BaseURL string

	// Language is the BCP-47 hint passed to the model. Defaults to "en".
	Language string
}

// NewTranscribeClient constructs a TranscribeClient.
func NewTranscribeClient(apiKey string, timeout time.Duration) *TranscribeClient {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &TranscribeClient{
		HTTP:     &http.Client{Timeout: timeout},
		APIKey:   apiKey,
		BaseURL:  defaultTranscribeURL,
		Language: "en",
	}
}

// transcribeResponse mirrors the subset of the provider payload we read.
type transcribeResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends raw audio and returns the best transcript. An empty
// transcript for non-empty audio is reported as ErrUnavailable: silence
// detection upstream is lossy and the caller retries before failing the call.
func (c *TranscribeClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio input")
	}

	endpoint := c.BaseURL
	if endpoint == "" {
		endpoint = defaultTranscribeURL
	}
	lang := c.Language
	if lang == "" {
		lang = "en"
	}
	q := url.Values{}
	q.Set("punctuate", "true")
	q.Set("language", lang)
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+sep+q.Encode(), bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("build transcribe request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.APIKey)
	req.Header.Set("Content-Type", "audio/mpeg")

	resp, err := c.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return "", ErrAuthFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: transcribe status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("unexpected transcribe status %d", resp.StatusCode)
	}

	var body transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode transcribe response: %w", err)
	}
	if len(body.Results.Channels) == 0 || len(body.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("%w: transcribe response has no alternatives", ErrUnavailable)
	}
	text := strings.TrimSpace(body.Results.Channels[0].Alternatives[0].Transcript)
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrUnavailable)
	}
	return text, nil
}

func (c *TranscribeClient) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 2 * time.Minute}
}
