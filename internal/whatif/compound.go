// Package whatif provides pure compounding math for savings scenarios.
package whatif

import "math"

// maxETAMonths caps the goal-ETA search at 50 years.
const maxETAMonths = 600

// FutureValue returns the value of a lump-sum corpus plus monthly
// contributions compounded at the given annual return over the given number
// of years. Contributions are treated as an annuity due (paid at the start
// of each month). The horizon is floored at one month.
func FutureValue(corpus, monthlyContribution, annualReturnPct, years float64) float64 {
	r := annualReturnPct / 100 / 12
	n := math.Round(years * 12)
	if n < 1 {
		n = 1
	}

	lumpSum := corpus * math.Pow(1+r, n)

	var annuity float64
	if r == 0 {
		annuity = monthlyContribution * n
	} else {
		annuity = monthlyContribution * ((math.Pow(1+r, n) - 1) / r) * (1 + r)
	}

	return lumpSum + annuity
}

// MonthsToGoal returns the first month at which the projected value reaches
// goalAmount. ok is false when the goal is not reached within 600 months.
func MonthsToGoal(corpus, monthlyContribution, annualReturnPct, goalAmount float64) (int, bool) {
	for m := 1; m <= maxETAMonths; m++ {
		if FutureValue(corpus, monthlyContribution, annualReturnPct, float64(m)/12) >= goalAmount {
			return m, true
		}
	}
	return 0, false
}
