package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nkhandel/go-call-digest-backend/internal/repo"
)

// Reaper releases stale claims: rows stuck in claimed/processing longer than
// Cutoff, left behind by a crash mid-pipeline. Releasing the row lets a
// re-delivered webhook claim the call again. Published and failed rows are
// never touched.
type Reaper struct {
	DB *gorm.DB

	// Cutoff is how old a non-terminal claim must be before release.
	Cutoff time.Duration
	// Interval is the sweep period.
	Interval time.Duration
}

// NewReaper constructs a Reaper with defaults of a 2h cutoff swept every 30m.
func NewReaper(db *gorm.DB) *Reaper {
	return &Reaper{DB: db, Cutoff: 2 * time.Hour, Interval: 30 * time.Minute}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	r.sweep(ctx)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.Cutoff)
	n, err := repo.SweepStale(ctx, r.DB, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("stale claim sweep failed")
		return
	}
	if n > 0 {
		reaperReleased.Add(float64(n))
		log.Warn().Int64("released", n).Time("cutoff", cutoff).Msg("released stale call claims")
	}
}
