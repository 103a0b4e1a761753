// Package providers implements the outbound collaborator clients the pipeline
// depends on: recording download, transcription, summarization, notification
// publishing, and best-effort customer lookup. Each client is a thin
// net/http wrapper that maps provider responses onto a small error taxonomy
// so the coordinator can decide retry-vs-fail without inspecting payloads.
package providers

import "errors"

// Downstream error taxonomy. Timeouts surface as context deadline errors from
// the HTTP client and are treated as transient by the coordinator alongside
// ErrRateLimited and ErrUnavailable.
var (
	// ErrNotFound: the recording locator points at nothing.
	ErrNotFound = errors.New("recording not found")

	// ErrAuthFailed: provider rejected our credentials; retrying cannot help.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited: provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable: provider returned a 5xx or an empty result.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrUnreachable: notification channel could not be reached.
	ErrUnreachable = errors.New("notification channel unreachable")

	// ErrRejected: notification channel refused the message.
	ErrRejected = errors.New("notification rejected")
)
