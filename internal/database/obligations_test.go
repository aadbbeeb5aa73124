package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

func TestObligationsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	newObligation := func(name, cadence string, dueDate time.Time) *models.RecurringObligation {
		return &models.RecurringObligation{
			UserID:  1,
			Name:    name,
			Kind:    models.ObligationSubscription,
			Cadence: cadence,
			Amount:  decimal.NewFromFloat(499.00),
			DueDate: dueDate,
		}
	}

	t.Run("CreateObligation creates new obligation", func(t *testing.T) {
		testDB.TruncateAll(t)

		o := newObligation("Netflix", models.CadenceMonthly, time.Now().AddDate(0, 1, 0))
		err := testDB.CreateObligation(o)
		require.NoError(t, err)
		assert.NotZero(t, o.ID)
		assert.False(t, o.CreatedAt.IsZero())
	})

	t.Run("GetObligationByID retrieves obligation", func(t *testing.T) {
		testDB.TruncateAll(t)

		o := newObligation("Gym", models.CadenceYearly, time.Now().AddDate(1, 0, 0))
		require.NoError(t, testDB.CreateObligation(o))

		retrieved, err := testDB.GetObligationByID(o.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gym", retrieved.Name)
		assert.Equal(t, models.CadenceYearly, retrieved.Cadence)
		assert.True(t, decimal.NewFromFloat(499.00).Equal(retrieved.Amount))
		assert.False(t, retrieved.Paid)
		assert.Nil(t, retrieved.PaidDate)
	})

	t.Run("GetOverdueRepeatingObligations excludes one_time and future", func(t *testing.T) {
		testDB.TruncateAll(t)
		now := time.Now()

		overdue := newObligation("Overdue", models.CadenceMonthly, now.AddDate(0, -2, 0))
		require.NoError(t, testDB.CreateObligation(overdue))

		future := newObligation("Future", models.CadenceMonthly, now.AddDate(0, 1, 0))
		require.NoError(t, testDB.CreateObligation(future))

		oneTime := newObligation("OneTime", models.CadenceOneTime, now.AddDate(0, -1, 0))
		require.NoError(t, testDB.CreateObligation(oneTime))

		obligations, err := testDB.GetOverdueRepeatingObligations(now)
		require.NoError(t, err)
		require.Len(t, obligations, 1)
		assert.Equal(t, overdue.ID, obligations[0].ID)
	})

	t.Run("UpdateObligationDueDate resets payment state for the new cycle", func(t *testing.T) {
		testDB.TruncateAll(t)
		now := time.Now()

		o := newObligation("Rent", models.CadenceMonthly, now.AddDate(0, -1, 0))
		require.NoError(t, testDB.CreateObligation(o))
		require.NoError(t, testDB.UpdateObligationPaid(o.ID, true, &now))

		next := now.AddDate(0, 1, 0)
		require.NoError(t, testDB.UpdateObligationDueDate(o.ID, next))

		retrieved, err := testDB.GetObligationByID(o.ID)
		require.NoError(t, err)
		assert.False(t, retrieved.Paid)
		assert.Nil(t, retrieved.PaidDate)
		assert.WithinDuration(t, next, retrieved.DueDate, time.Second)
	})

	t.Run("UpdateObligationPaid stamps and clears paid date", func(t *testing.T) {
		testDB.TruncateAll(t)
		now := time.Now()

		o := newObligation("Insurance", models.CadenceYearly, now)
		require.NoError(t, testDB.CreateObligation(o))

		require.NoError(t, testDB.UpdateObligationPaid(o.ID, true, &now))
		retrieved, err := testDB.GetObligationByID(o.ID)
		require.NoError(t, err)
		assert.True(t, retrieved.Paid)
		require.NotNil(t, retrieved.PaidDate)

		require.NoError(t, testDB.UpdateObligationPaid(o.ID, false, nil))
		retrieved, err = testDB.GetObligationByID(o.ID)
		require.NoError(t, err)
		assert.False(t, retrieved.Paid)
		assert.Nil(t, retrieved.PaidDate)
	})

	t.Run("CreateInstallments stores the full schedule", func(t *testing.T) {
		testDB.TruncateAll(t)

		o := newObligation("Committee", models.CadenceMonthly, time.Now())
		o.Kind = models.ObligationCommittee
		require.NoError(t, testDB.CreateObligation(o))

		installments := make([]models.Installment, 0, 10)
		for month := 1; month <= 10; month++ {
			installments = append(installments, models.Installment{
				ObligationID: o.ID,
				Month:        month,
				Amount:       decimal.NewFromInt(5000),
			})
		}
		require.NoError(t, testDB.CreateInstallments(installments))

		stored, err := testDB.GetInstallmentsByObligation(o.ID)
		require.NoError(t, err)
		require.Len(t, stored, 10)
		for i, inst := range stored {
			assert.Equal(t, i+1, inst.Month)
			assert.False(t, inst.Paid)
			assert.True(t, decimal.NewFromInt(5000).Equal(inst.Amount))
		}
	})

	t.Run("UpdateInstallmentPaid marks a single slot", func(t *testing.T) {
		testDB.TruncateAll(t)
		now := time.Now()

		o := newObligation("Committee", models.CadenceMonthly, now)
		o.Kind = models.ObligationCommittee
		require.NoError(t, testDB.CreateObligation(o))

		installments := []models.Installment{
			{ObligationID: o.ID, Month: 1, Amount: decimal.NewFromInt(5000)},
			{ObligationID: o.ID, Month: 2, Amount: decimal.NewFromInt(5000)},
		}
		require.NoError(t, testDB.CreateInstallments(installments))

		require.NoError(t, testDB.UpdateInstallmentPaid(installments[0].ID, true, &now))

		stored, err := testDB.GetInstallmentsByObligation(o.ID)
		require.NoError(t, err)
		assert.True(t, stored[0].Paid)
		require.NotNil(t, stored[0].PaidDate)
		assert.False(t, stored[1].Paid)
	})
}
