package models

import "time"

// Ledger entry type constants
const (
	EntryTypeBuy  = "BUY"
	EntryTypeSell = "SELL"
	EntryTypeSIP  = "SIP"
	EntryTypeFee  = "FEE"
)

// Investment represents a tracked investment instrument owned by a user
type Investment struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	AssetType string    `json:"asset_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerEntry represents a single immutable transaction against an investment.
// Entries are ordered by ExecutedAt ascending when folded into a holding.
type LedgerEntry struct {
	ID           int       `json:"id"`
	InvestmentID int       `json:"investment_id"`
	EntryType    string    `json:"entry_type"`
	Quantity     float64   `json:"quantity"`
	Amount       float64   `json:"amount"`
	Fees         float64   `json:"fees,omitempty"`
	Taxes        float64   `json:"taxes,omitempty"`
	ExecutedAt   time.Time `json:"executed_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Holding is the derived position for an investment. It is always recomputed
// wholesale from the full ledger entry sequence, never patched incrementally.
type Holding struct {
	InvestmentID int       `json:"investment_id"`
	Symbol       string    `json:"symbol,omitempty"`
	Quantity     float64   `json:"quantity"`
	CostBasis    float64   `json:"cost_basis"`
	AvgBuyPrice  float64   `json:"avg_buy_price"`
	AsOf         time.Time `json:"as_of"`
}

// MarketValue returns the holding's value at the given price.
func (h Holding) MarketValue(price float64) float64 {
	return h.Quantity * price
}

// UnrealizedPnl returns the gain or loss at the given price.
func (h Holding) UnrealizedPnl(price float64) float64 {
	return h.MarketValue(price) - h.CostBasis
}
