package projection

import (
	"fmt"
	"time"

	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// GoalStore defines the record-store operations the engine needs
type GoalStore interface {
	GetActiveGoals(userID int) ([]*models.Goal, error)
	GetCashTransactionsSince(userID int, since time.Time) ([]models.CashTransaction, error)
}

// Engine computes goal projections from stored goals and transaction history
type Engine struct {
	store        GoalStore
	windowMonths int
}

// NewEngine creates a projection engine with the given trailing window.
// A non-positive window falls back to the default.
func NewEngine(store GoalStore, windowMonths int) *Engine {
	if windowMonths <= 0 {
		windowMonths = DefaultWindowMonths
	}
	return &Engine{store: store, windowMonths: windowMonths}
}

// ProjectForUser loads a user's active goals and trailing transaction
// history and returns one projection per goal. Missing history degrades to
// zero savings, never an error.
func (e *Engine) ProjectForUser(userID int, now time.Time) ([]models.GoalProjection, error) {
	goals, err := e.store.GetActiveGoals(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	if len(goals) == 0 {
		return nil, nil
	}

	since := now.AddDate(0, -e.windowMonths, 0)
	txns, err := e.store.GetCashTransactionsSince(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction history: %w", err)
	}

	return ProjectGoals(goals, AvgMonthlySavings(txns), now), nil
}
