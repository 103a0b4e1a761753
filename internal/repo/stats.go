// Package repo implements the persistence layer for the call ledger, backed
// by GORM. This file provides small aggregate queries used by the /stats
// endpoint and the admin CLI.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/nkhandel/go-call-digest-backend/internal/domain"
)

// LedgerStats summarizes the ledger by lifecycle status.
type LedgerStats struct {
	Total      int64 `json:"total_processed"`
	Published  int64 `json:"successfully_published"`
	Failed     int64 `json:"failed"`
	Claimed    int64 `json:"claimed"`
	Processing int64 `json:"processing"`
}

// CallStats returns row counts per status in a single grouped query.
func CallStats(ctx context.Context, db *gorm.DB) (LedgerStats, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := db.WithContext(ctx).
		Model(&domain.CallRecord{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return LedgerStats{}, err
	}

	var s LedgerStats
	for _, r := range rows {
		s.Total += r.N
		switch r.Status {
		case domain.StatusPublished:
			s.Published = r.N
		case domain.StatusFailed:
			s.Failed = r.N
		case domain.StatusClaimed:
			s.Claimed = r.N
		case domain.StatusProcessing:
			s.Processing = r.N
		}
	}
	return s, nil
}
