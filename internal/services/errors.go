// Package services implements the call-processing pipeline: claiming inbound
// events, resolving direction and agent, running the download → transcribe →
// summarize → publish chain under bounded concurrency, and recording the
// terminal outcome in the ledger.
//
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers. Translation
// into HTTP status codes is performed at the handler layer.
package services

import "errors"

var (
	// ErrMissingCallID is returned when an inbound event carries no call id.
	// Without an id the dedup ledger has no key, so the event is rejected.
	ErrMissingCallID = errors.New("event is missing call id")

	// ErrDuplicateCall indicates the call id was already claimed by an
	// earlier delivery. The caller should acknowledge and do nothing.
	ErrDuplicateCall = errors.New("call already claimed")

	// ErrNotCompleted is returned for events whose status is not a completed
	// call. Ringing/busy/failed-dial events carry no recording to process.
	ErrNotCompleted = errors.New("event is not a completed call")

	// ErrShuttingDown is returned when the coordinator no longer accepts
	// submissions because shutdown has begun.
	ErrShuttingDown = errors.New("pipeline is shutting down")
)
