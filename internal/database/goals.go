package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// CreateGoal inserts a new savings goal
func (db *DB) CreateGoal(g *models.Goal) error {
	query := `
		INSERT INTO goals (
			user_id, name, target_amount, current_amount, deadline, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	now := time.Now()
	if g.Status == "" {
		g.Status = models.GoalStatusActive
	}

	err := db.conn.QueryRow(query,
		g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, g.Deadline, g.Status, now, now,
	).Scan(&g.ID)

	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	return nil
}

// GetGoalByID retrieves a goal by ID
func (db *DB) GetGoalByID(id int) (*models.Goal, error) {
	query := `
		SELECT id, user_id, name, target_amount, current_amount, deadline, status, created_at, updated_at
		FROM goals
		WHERE id = $1
	`
	var g models.Goal
	var deadline sql.NullTime

	err := db.conn.QueryRow(query, id).Scan(
		&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &deadline,
		&g.Status, &g.CreatedAt, &g.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("goal not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	if deadline.Valid {
		g.Deadline = &deadline.Time
	}

	return &g, nil
}

// GetActiveGoals retrieves a user's active goals
func (db *DB) GetActiveGoals(userID int) ([]*models.Goal, error) {
	query := `
		SELECT id, user_id, name, target_amount, current_amount, deadline, status, created_at, updated_at
		FROM goals
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at ASC
	`
	rows, err := db.conn.Query(query, userID, models.GoalStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		var g models.Goal
		var deadline sql.NullTime

		err := rows.Scan(
			&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &deadline,
			&g.Status, &g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}

		if deadline.Valid {
			g.Deadline = &deadline.Time
		}

		goals = append(goals, &g)
	}

	return goals, nil
}

// UpdateGoalCurrentAmount records progress toward a goal
func (db *DB) UpdateGoalCurrentAmount(id int, amount float64) error {
	query := `UPDATE goals SET current_amount = $2, updated_at = $3 WHERE id = $1`
	result, err := db.conn.Exec(query, id, amount, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update goal amount: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("goal not found: %d", id)
	}
	return nil
}

// CreateCashTransaction inserts a parsed income or expense record
func (db *DB) CreateCashTransaction(t *models.CashTransaction) error {
	query := `
		INSERT INTO cash_transactions (
			user_id, txn_type, amount, category, source, external_id, occurred_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		t.UserID, t.TxnType, t.Amount, t.Category, t.Source, t.ExternalID, t.OccurredAt, now,
	).Scan(&t.ID)

	if err != nil {
		return fmt.Errorf("failed to create cash transaction: %w", err)
	}
	t.CreatedAt = now
	return nil
}

// CashTransactionExists checks whether a transaction from the given source
// with the given external id is already stored
func (db *DB) CashTransactionExists(source, externalID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM cash_transactions WHERE source = $1 AND external_id = $2)`
	var exists bool
	err := db.conn.QueryRow(query, source, externalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check cash transaction existence: %w", err)
	}
	return exists, nil
}

// GetCashTransactionsSince retrieves a user's transactions on or after the
// given instant, oldest first.
func (db *DB) GetCashTransactionsSince(userID int, since time.Time) ([]models.CashTransaction, error) {
	query := `
		SELECT id, user_id, txn_type, amount, category, source, external_id, occurred_at, created_at
		FROM cash_transactions
		WHERE user_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at ASC
	`
	rows, err := db.conn.Query(query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.CashTransaction
	for rows.Next() {
		var t models.CashTransaction
		var category, source, externalID sql.NullString

		err := rows.Scan(
			&t.ID, &t.UserID, &t.TxnType, &t.Amount, &category, &source, &externalID,
			&t.OccurredAt, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash transaction: %w", err)
		}

		if category.Valid {
			t.Category = category.String
		}
		if source.Valid {
			t.Source = source.String
		}
		if externalID.Valid {
			t.ExternalID = externalID.String
		}

		txns = append(txns, t)
	}

	return txns, nil
}
