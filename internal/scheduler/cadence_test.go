package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDue(t *testing.T) {
	t.Run("monthly adds one calendar month", func(t *testing.T) {
		assert.Equal(t, date(2024, 2, 1), NextDue(date(2024, 1, 1), models.CadenceMonthly))
	})

	t.Run("yearly adds one calendar year", func(t *testing.T) {
		assert.Equal(t, date(2025, 3, 15), NextDue(date(2024, 3, 15), models.CadenceYearly))
	})

	t.Run("one_time is unchanged", func(t *testing.T) {
		due := date(2024, 1, 1)
		assert.Equal(t, due, NextDue(due, models.CadenceOneTime))
	})
}

func TestRollforward(t *testing.T) {
	t.Run("returns first due date strictly after now", func(t *testing.T) {
		got := Rollforward(date(2024, 1, 1), models.CadenceMonthly, date(2024, 3, 15))
		assert.Equal(t, date(2024, 4, 1), got)
	})

	t.Run("due date already in future is unchanged", func(t *testing.T) {
		got := Rollforward(date(2024, 6, 1), models.CadenceMonthly, date(2024, 3, 15))
		assert.Equal(t, date(2024, 6, 1), got)
	})

	t.Run("due date equal to now advances one period", func(t *testing.T) {
		got := Rollforward(date(2024, 3, 15), models.CadenceMonthly, date(2024, 3, 15))
		assert.Equal(t, date(2024, 4, 15), got)
	})

	t.Run("yearly rolls past now", func(t *testing.T) {
		got := Rollforward(date(2020, 1, 1), models.CadenceYearly, date(2023, 6, 1))
		assert.Equal(t, date(2024, 1, 1), got)
	})

	t.Run("one_time is unaffected regardless of now", func(t *testing.T) {
		due := date(2020, 1, 1)
		assert.Equal(t, due, Rollforward(due, models.CadenceOneTime, date(2024, 3, 15)))
	})

	t.Run("shift cap returns last computed date", func(t *testing.T) {
		// 30 months stale exceeds the 24-shift cap for monthly cadence.
		got := Rollforward(date(2020, 1, 1), models.CadenceMonthly, date(2022, 7, 15))
		assert.Equal(t, date(2022, 1, 1), got)
	})
}

func TestMarkPaid(t *testing.T) {
	now := date(2024, 5, 10)
	o := &models.RecurringObligation{Cadence: models.CadenceMonthly}

	MarkPaid(o, now)
	require.True(t, o.Paid)
	require.NotNil(t, o.PaidDate)
	assert.Equal(t, now, *o.PaidDate)

	MarkUnpaid(o)
	assert.False(t, o.Paid)
	assert.Nil(t, o.PaidDate)
}

func TestBuildInstallments(t *testing.T) {
	t.Run("materializes numbered unpaid installments", func(t *testing.T) {
		installments, err := BuildInstallments(3, decimal.NewFromInt(12000), 12)
		require.NoError(t, err)
		require.Len(t, installments, 12)
		for i, inst := range installments {
			assert.Equal(t, 3, inst.ObligationID)
			assert.Equal(t, i+1, inst.Month)
			assert.False(t, inst.Paid)
			assert.True(t, decimal.NewFromInt(1000).Equal(inst.Amount), "month %d: %s", inst.Month, inst.Amount)
		}
	})

	t.Run("last installment absorbs rounding remainder", func(t *testing.T) {
		total := decimal.NewFromInt(1000)
		installments, err := BuildInstallments(1, total, 3)
		require.NoError(t, err)
		require.Len(t, installments, 3)

		sum := decimal.Zero
		for _, inst := range installments {
			sum = sum.Add(inst.Amount)
		}
		assert.True(t, total.Equal(sum), "sum %s != total %s", sum, total)
		assert.True(t, decimal.NewFromFloat(333.33).Equal(installments[0].Amount))
		assert.True(t, decimal.NewFromFloat(333.34).Equal(installments[2].Amount))
	})

	t.Run("rejects non-positive months", func(t *testing.T) {
		_, err := BuildInstallments(1, decimal.NewFromInt(100), 0)
		require.Error(t, err)
	})

	t.Run("rejects negative total", func(t *testing.T) {
		_, err := BuildInstallments(1, decimal.NewFromInt(-100), 10)
		require.Error(t, err)
	})
}

type fakeObligationStore struct {
	obligations []*models.RecurringObligation
	updated     map[int]time.Time
	loadErr     error
	updateErr   map[int]error
}

func (f *fakeObligationStore) GetOverdueRepeatingObligations(now time.Time) ([]*models.RecurringObligation, error) {
	return f.obligations, f.loadErr
}

func (f *fakeObligationStore) UpdateObligationDueDate(id int, dueDate time.Time) error {
	if err := f.updateErr[id]; err != nil {
		return err
	}
	if f.updated == nil {
		f.updated = make(map[int]time.Time)
	}
	f.updated[id] = dueDate
	return nil
}

func TestSyncDueDates(t *testing.T) {
	now := date(2024, 3, 15)

	t.Run("advances overdue obligations past now", func(t *testing.T) {
		store := &fakeObligationStore{
			obligations: []*models.RecurringObligation{
				{ID: 1, Cadence: models.CadenceMonthly, DueDate: date(2024, 1, 1)},
				{ID: 2, Cadence: models.CadenceYearly, DueDate: date(2023, 2, 1)},
			},
		}
		syncer := NewSyncer(store, zerolog.Nop())

		summary, err := syncer.SyncDueDates(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Scanned)
		assert.Equal(t, 2, summary.Advanced)
		assert.Equal(t, 0, summary.Failed)
		assert.Equal(t, date(2024, 4, 1), store.updated[1])
		assert.Equal(t, date(2025, 2, 1), store.updated[2])
	})

	t.Run("per-entity failure does not abort the batch", func(t *testing.T) {
		store := &fakeObligationStore{
			obligations: []*models.RecurringObligation{
				{ID: 1, Cadence: models.CadenceMonthly, DueDate: date(2024, 1, 1)},
				{ID: 2, Cadence: models.CadenceMonthly, DueDate: date(2024, 2, 1)},
			},
			updateErr: map[int]error{1: errors.New("store down")},
		}
		syncer := NewSyncer(store, zerolog.Nop())

		summary, err := syncer.SyncDueDates(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Advanced)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, date(2024, 4, 1), store.updated[2])
	})

	t.Run("load failure is fatal", func(t *testing.T) {
		store := &fakeObligationStore{loadErr: errors.New("connection refused")}
		syncer := NewSyncer(store, zerolog.Nop())

		_, err := syncer.SyncDueDates(context.Background(), now)
		require.Error(t, err)
	})
}
