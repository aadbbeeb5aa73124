// Package ledger derives holdings from investment transaction history using
// weighted-average cost accounting.
package ledger

import (
	"time"

	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// epsilon below which a residual quantity is treated as fully liquidated.
const epsilon = 1e-6

// ComputeHolding folds an ordered-by-date ledger entry sequence into a
// holding. The fold is a pure reduction: given the same sequence it always
// produces the same holding, and it is the only way a holding may change.
// Entries executed after asOf are excluded from the fold.
//
// Buys and SIP purchases add quantity and cost (amount plus fees and taxes).
// Sells reduce quantity at the running average cost; a sell larger than the
// held position is clamped to a full liquidation, never going negative.
// Fees add sunk cost without quantity.
func ComputeHolding(investmentID int, entries []models.LedgerEntry, asOf time.Time) models.Holding {
	var quantity, costBasis float64

	for _, e := range entries {
		if e.ExecutedAt.After(asOf) {
			continue
		}
		switch e.EntryType {
		case models.EntryTypeBuy, models.EntryTypeSIP:
			quantity += e.Quantity
			costBasis += e.Amount + e.Fees + e.Taxes
		case models.EntryTypeSell:
			if quantity <= 0 {
				continue
			}
			avgCost := costBasis / quantity
			reduceQty := e.Quantity
			if reduceQty > quantity {
				reduceQty = quantity
			}
			costBasis -= avgCost * reduceQty
			quantity -= reduceQty
			if quantity < epsilon {
				quantity = 0
				costBasis = 0
			}
		case models.EntryTypeFee:
			costBasis += e.Amount
		}
	}

	h := models.Holding{
		InvestmentID: investmentID,
		Quantity:     quantity,
		CostBasis:    costBasis,
		AsOf:         asOf,
	}
	if quantity > 0 {
		h.AvgBuyPrice = costBasis / quantity
	}
	return h
}
