// Package scheduler advances due dates for recurring obligations and
// materializes fixed committee installment schedules.
package scheduler

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// maxRollforwardShifts caps the rollforward loop. Hitting it means the due
// date was years stale or corrupt; the last computed date is returned and the
// anomaly is logged.
const maxRollforwardShifts = 24

// NextDue applies a single cadence shift to a due date. ONE_TIME cadences
// are terminal and return the input unchanged.
func NextDue(due time.Time, cadence string) time.Time {
	switch cadence {
	case models.CadenceMonthly:
		return due.AddDate(0, 1, 0)
	case models.CadenceYearly:
		return due.AddDate(1, 0, 0)
	default:
		return due
	}
}

// Rollforward shifts a due date until it is strictly after now, bounded at
// maxRollforwardShifts. ONE_TIME obligations are never moved.
func Rollforward(due time.Time, cadence string, now time.Time) time.Time {
	if cadence == models.CadenceOneTime {
		return due
	}

	next := due
	for i := 0; i < maxRollforwardShifts && !next.After(now); i++ {
		next = NextDue(next, cadence)
	}
	if !next.After(now) {
		log.Warn().
			Str("cadence", cadence).
			Time("due_date", due).
			Time("now", now).
			Msg("rollforward hit shift cap with due date still in the past")
	}
	return next
}

// MarkPaid records a payment against an obligation, stamping the paid date.
func MarkPaid(o *models.RecurringObligation, now time.Time) {
	o.Paid = true
	o.PaidDate = &now
}

// MarkUnpaid reverses a recorded payment and clears the paid date.
func MarkUnpaid(o *models.RecurringObligation) {
	o.Paid = false
	o.PaidDate = nil
}
