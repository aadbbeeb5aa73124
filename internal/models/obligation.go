package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cadence constants
const (
	CadenceMonthly = "MONTHLY"
	CadenceYearly  = "YEARLY"
	CadenceOneTime = "ONE_TIME"
)

// Obligation kind constants
const (
	ObligationSubscription = "SUBSCRIPTION"
	ObligationSIP          = "SIP"
	ObligationCommittee    = "COMMITTEE"
)

// RecurringObligation represents a cadenced payment commitment such as a
// subscription, a SIP installment, or a committee contribution.
type RecurringObligation struct {
	ID        int             `json:"id"`
	UserID    int             `json:"user_id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Cadence   string          `json:"cadence"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date"`
	Paid      bool            `json:"paid"`
	PaidDate  *time.Time      `json:"paid_date,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Installment is one slot of a committee's fixed payment schedule. The full
// schedule is materialized once at creation and its length never changes.
type Installment struct {
	ID           int             `json:"id"`
	ObligationID int             `json:"obligation_id"`
	Month        int             `json:"month"`
	Amount       decimal.Decimal `json:"amount"`
	Paid         bool            `json:"paid"`
	PaidDate     *time.Time      `json:"paid_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
