package scheduler

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// BuildInstallments materializes a committee's fixed payment schedule:
// exactly months installments numbered 1..months, all unpaid. The total is
// split evenly with the last installment absorbing the rounding remainder,
// so the installments always sum back to the total. The schedule length is
// fixed forever once created.
func BuildInstallments(obligationID int, total decimal.Decimal, months int) ([]models.Installment, error) {
	if months < 1 {
		return nil, fmt.Errorf("installment months must be >= 1, got %d", months)
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("installment total must not be negative, got %s", total)
	}

	per := total.Div(decimal.NewFromInt(int64(months))).RoundBank(2)
	installments := make([]models.Installment, months)
	for i := 0; i < months; i++ {
		amount := per
		if i == months-1 {
			amount = total.Sub(per.Mul(decimal.NewFromInt(int64(months - 1))))
		}
		installments[i] = models.Installment{
			ObligationID: obligationID,
			Month:        i + 1,
			Amount:       amount,
			Paid:         false,
		}
	}
	return installments, nil
}
