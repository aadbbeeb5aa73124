package models

import "time"

// Goal status constants
const (
	GoalStatusActive    = "ACTIVE"
	GoalStatusCompleted = "COMPLETED"
	GoalStatusPaused    = "PAUSED"
)

// Projection status constants
const (
	ProjectionOnTrack  = "ON_TRACK"
	ProjectionAtRisk   = "AT_RISK"
	ProjectionOffTrack = "OFF_TRACK"
)

// Cash transaction type constants
const (
	TxnTypeIncome  = "INCOME"
	TxnTypeExpense = "EXPENSE"
)

// Goal represents a savings target with an optional deadline
type Goal struct {
	ID            int        `json:"id"`
	UserID        int        `json:"user_id"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GoalProjection is the computed completion forecast for a goal.
// It is derived on demand and never stored.
type GoalProjection struct {
	GoalID              int     `json:"goal_id"`
	Remaining           float64 `json:"remaining"`
	MonthsLeft          float64 `json:"months_left"`
	MonthlyRequired     float64 `json:"monthly_required"`
	MonthlyAllocation   float64 `json:"monthly_allocation"`
	ProjectedAtDeadline float64 `json:"projected_at_deadline"`
	Probability         float64 `json:"probability"`
	Status              string  `json:"status"`
}

// CashTransaction represents a parsed income or expense record supplied by
// the email-ingestion pipeline.
type CashTransaction struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	TxnType    string    `json:"txn_type"`
	Amount     float64   `json:"amount"`
	Category   string    `json:"category,omitempty"`
	Source     string    `json:"source,omitempty"`
	ExternalID string    `json:"external_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
