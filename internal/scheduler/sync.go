package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// ObligationStore defines the record-store operations the sync batch needs
type ObligationStore interface {
	GetOverdueRepeatingObligations(now time.Time) ([]*models.RecurringObligation, error)
	UpdateObligationDueDate(id int, dueDate time.Time) error
}

// Syncer rolls overdue repeating obligations forward to their next due date
type Syncer struct {
	store  ObligationStore
	logger zerolog.Logger
}

// NewSyncer creates a new Syncer
func NewSyncer(store ObligationStore, logger zerolog.Logger) *Syncer {
	return &Syncer{store: store, logger: logger}
}

// SyncSummary reports the outcome of a sync batch
type SyncSummary struct {
	Scanned  int `json:"scanned"`
	Advanced int `json:"advanced"`
	Failed   int `json:"failed"`
}

// SyncDueDates advances every overdue repeating obligation past now.
// Per-entity store failures are logged and do not abort the batch; only a
// failure to load the batch itself is fatal.
func (s *Syncer) SyncDueDates(ctx context.Context, now time.Time) (SyncSummary, error) {
	var summary SyncSummary

	obligations, err := s.store.GetOverdueRepeatingObligations(now)
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(obligations)

	for _, o := range obligations {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		next := Rollforward(o.DueDate, o.Cadence, now)
		if next.Equal(o.DueDate) {
			continue
		}
		if err := s.store.UpdateObligationDueDate(o.ID, next); err != nil {
			summary.Failed++
			s.logger.Error().Err(err).Int("obligation_id", o.ID).Msg("failed to advance due date")
			continue
		}
		summary.Advanced++
	}

	return summary, nil
}
