// Package repo implements the persistence layer for the call ledger, backed
// by GORM. This file provides the call-record repository: the atomic claim
// that deduplicates webhook deliveries, the status transitions of the
// processing state machine, and the stale-claim sweep.
//
// Error semantics:
//   - TryClaim returns ErrDuplicate when a row for the call id already exists.
//   - Lookups return ErrNotFound (alias of gorm.ErrRecordNotFound).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nkhandel/go-call-digest-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that a ledger row already exists for the call id —
// the caller lost the claim race (or this is a webhook retry) and must not
// process the call.
var ErrDuplicate = errors.New("duplicate call")

// TryClaim atomically inserts a CLAIMED row for the event's call id. The
// primary-key uniqueness constraint makes the insert linearizable across
// concurrent deliveries: exactly one caller gets the row back, every other
// caller gets ErrDuplicate. This is the single source of truth for "has this
// call ever been accepted for processing".
func TryClaim(ctx context.Context, db *gorm.DB, ev domain.CallEvent) (*domain.CallRecord, error) {
	now := time.Now().UTC()
	rec := &domain.CallRecord{
		CallID:          ev.CallID,
		FromNumber:      ev.FromNumber,
		ToNumber:        ev.ToNumber,
		DurationSeconds: ev.DurationSeconds,
		Status:          domain.StatusClaimed,
		ClaimedAt:       now,
		EventTime:       ev.Timestamp,
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// isUniqueViolation detects primary-key/unique-index conflicts.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// MarkProcessing transitions a claimed row to PROCESSING. The row must exist;
// ErrNotFound is returned otherwise.
func MarkProcessing(ctx context.Context, db *gorm.DB, callID string) error {
	return transition(ctx, db, callID, map[string]any{
		"status": domain.StatusProcessing,
	})
}

// MarkPublished transitions a row to the terminal PUBLISHED status and stores
// the published outcome. Calling it again for an already-published row is a
// no-op, not an error, so a retried finalization never double-counts.
func MarkPublished(ctx context.Context, db *gorm.DB, callID string, outcome PublishedOutcome) error {
	var rec domain.CallRecord
	err := db.WithContext(ctx).Where("call_id = ?", callID).First(&rec).Error
	if err != nil {
		return err
	}
	if rec.Status == domain.StatusPublished {
		return nil
	}
	now := time.Now().UTC()
	return db.WithContext(ctx).
		Model(&domain.CallRecord{}).
		Where("call_id = ?", callID).
		Updates(map[string]any{
			"status":       domain.StatusPublished,
			"completed_at": &now,
			"last_error":   "",
			"direction":    outcome.Direction,
			"agent_name":   outcome.AgentName,
			"transcript":   outcome.Transcript,
			"summary":      outcome.Summary,
		}).Error
}

// PublishedOutcome carries the fields persisted when a call reaches PUBLISHED.
type PublishedOutcome struct {
	Direction  string
	AgentName  string
	Transcript string
	Summary    string
}

// MarkFailed transitions a row to the terminal FAILED status, recording the
// error that stopped the pipeline. A PUBLISHED row is never demoted.
func MarkFailed(ctx context.Context, db *gorm.DB, callID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.CallRecord{}).
		Where("call_id = ? AND status <> ?", callID, domain.StatusPublished).
		Updates(map[string]any{
			"status":       domain.StatusFailed,
			"completed_at": &now,
			"last_error":   msg,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row is missing or it already published; distinguish.
		var rec domain.CallRecord
		if err := db.WithContext(ctx).Where("call_id = ?", callID).First(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}

// transition applies updates to an existing row, returning ErrNotFound when
// the call id has no ledger entry.
func transition(ctx context.Context, db *gorm.DB, callID string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.CallRecord{}).
		Where("call_id = ?", callID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCall fetches the ledger row for a call id, or ErrNotFound.
func GetCall(ctx context.Context, db *gorm.DB, callID string) (*domain.CallRecord, error) {
	var rec domain.CallRecord
	err := db.WithContext(ctx).Where("call_id = ?", callID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountCalls returns the total number of ledger rows.
func CountCalls(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.CallRecord{}).Count(&total).Error
	return total, err
}

// ListCallsPage returns a page of ledger rows ordered by claim time
// descending. The caller computes offset and limit.
func ListCallsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.CallRecord, error) {
	var out []domain.CallRecord
	err := db.WithContext(ctx).
		Order("claimed_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SweepStale deletes CLAIMED and PROCESSING rows whose claim is older than
// cutoff, returning those call ids to future delivery attempts. Terminal rows
// are never touched: PUBLISHED is permanent by invariant, FAILED is kept for
// inspection and released only by an explicit operator sweep.
func SweepStale(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("status IN ? AND claimed_at < ?",
			[]string{domain.StatusClaimed, domain.StatusProcessing}, cutoff.UTC()).
		Delete(&domain.CallRecord{})
	return res.RowsAffected, res.Error
}

// SweepFailed deletes FAILED rows older than cutoff so the same call ids can
// be re-delivered by an operator. Used by the admin CLI, never by the
// background reaper.
func SweepFailed(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("status = ? AND claimed_at < ?", domain.StatusFailed, cutoff.UTC()).
		Delete(&domain.CallRecord{})
	return res.RowsAffected, res.Error
}
