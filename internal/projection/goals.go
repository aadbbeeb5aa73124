// Package projection forecasts goal completion from recent savings behavior.
package projection

import (
	"time"

	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// DefaultWindowMonths is the trailing transaction window the engine looks at.
const DefaultWindowMonths = 6

// Projection status thresholds, in percent.
const (
	onTrackThreshold = 85
	atRiskThreshold  = 60
)

const daysPerMonth = 30

type monthKey struct {
	year  int
	month time.Month
}

// AvgMonthlySavings partitions transactions into (year, month) buckets and
// returns the mean of per-bucket income minus expenses. Zero when there is
// no history.
func AvgMonthlySavings(txns []models.CashTransaction) float64 {
	buckets := make(map[monthKey]float64)
	for _, txn := range txns {
		key := monthKey{txn.OccurredAt.Year(), txn.OccurredAt.Month()}
		switch txn.TxnType {
		case models.TxnTypeIncome:
			buckets[key] += txn.Amount
		case models.TxnTypeExpense:
			buckets[key] -= txn.Amount
		}
	}
	if len(buckets) == 0 {
		return 0
	}

	var total float64
	for _, savings := range buckets {
		total += savings
	}
	return total / float64(len(buckets))
}

// ProjectGoals forecasts completion for every goal, assuming the average
// monthly surplus is shared equally across them. Negative average savings
// allocates nothing; spending history alone never projects negative
// progress.
func ProjectGoals(goals []*models.Goal, avgMonthlySavings float64, now time.Time) []models.GoalProjection {
	allocation := 0.0
	if avgMonthlySavings > 0 && len(goals) > 0 {
		allocation = avgMonthlySavings / float64(len(goals))
	}

	projections := make([]models.GoalProjection, 0, len(goals))
	for _, g := range goals {
		projections = append(projections, projectGoal(g, allocation, now))
	}
	return projections
}

func projectGoal(g *models.Goal, allocation float64, now time.Time) models.GoalProjection {
	p := models.GoalProjection{
		GoalID:            g.ID,
		MonthlyAllocation: allocation,
	}

	p.Remaining = g.TargetAmount - g.CurrentAmount
	if p.Remaining < 0 {
		p.Remaining = 0
	}

	if g.Deadline != nil {
		monthsLeft := g.Deadline.Sub(now).Hours() / 24 / daysPerMonth
		if monthsLeft > 0 {
			p.MonthsLeft = monthsLeft
		}
	}

	if p.MonthsLeft > 0 && p.Remaining > 0 {
		p.MonthlyRequired = p.Remaining / p.MonthsLeft
	}

	p.ProjectedAtDeadline = g.CurrentAmount
	if p.MonthsLeft > 0 {
		p.ProjectedAtDeadline += allocation * p.MonthsLeft
	}

	if g.TargetAmount <= 0 {
		p.Probability = 100
	} else {
		p.Probability = p.ProjectedAtDeadline / g.TargetAmount * 100
		if p.Probability > 100 {
			p.Probability = 100
		}
		if p.Probability < 0 {
			p.Probability = 0
		}
	}

	switch {
	case p.Probability >= onTrackThreshold:
		p.Status = models.ProjectionOnTrack
	case p.Probability >= atRiskThreshold:
		p.Status = models.ProjectionAtRisk
	default:
		p.Status = models.ProjectionOffTrack
	}

	return p
}
