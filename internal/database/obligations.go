package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// CreateObligation inserts a new recurring obligation
func (db *DB) CreateObligation(o *models.RecurringObligation) error {
	query := `
		INSERT INTO obligations (
			user_id, name, kind, cadence, amount, due_date, paid, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		o.UserID, o.Name, o.Kind, o.Cadence, o.Amount, o.DueDate, o.Paid, now, now,
	).Scan(&o.ID)

	if err != nil {
		return fmt.Errorf("failed to create obligation: %w", err)
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	return nil
}

// GetObligationByID retrieves an obligation by ID
func (db *DB) GetObligationByID(id int) (*models.RecurringObligation, error) {
	query := `
		SELECT id, user_id, name, kind, cadence, amount, due_date, paid, paid_date, created_at, updated_at
		FROM obligations
		WHERE id = $1
	`
	var o models.RecurringObligation
	var amount sql.NullString
	var paidDate sql.NullTime

	err := db.conn.QueryRow(query, id).Scan(
		&o.ID, &o.UserID, &o.Name, &o.Kind, &o.Cadence, &amount, &o.DueDate,
		&o.Paid, &paidDate, &o.CreatedAt, &o.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("obligation not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}

	if amount.Valid {
		o.Amount, _ = decimal.NewFromString(amount.String)
	}
	if paidDate.Valid {
		o.PaidDate = &paidDate.Time
	}

	return &o, nil
}

// GetOverdueRepeatingObligations retrieves repeating obligations whose due
// date is not after now, in the order the sync batch processes them.
func (db *DB) GetOverdueRepeatingObligations(now time.Time) ([]*models.RecurringObligation, error) {
	query := `
		SELECT id, user_id, name, kind, cadence, amount, due_date, paid, paid_date, created_at, updated_at
		FROM obligations
		WHERE cadence != $1 AND due_date <= $2
		ORDER BY due_date ASC
	`
	return db.scanObligations(db.conn.Query(query, models.CadenceOneTime, now))
}

// GetObligationsByUser retrieves all obligations for a user
func (db *DB) GetObligationsByUser(userID int) ([]*models.RecurringObligation, error) {
	query := `
		SELECT id, user_id, name, kind, cadence, amount, due_date, paid, paid_date, created_at, updated_at
		FROM obligations
		WHERE user_id = $1
		ORDER BY due_date ASC
	`
	return db.scanObligations(db.conn.Query(query, userID))
}

func (db *DB) scanObligations(rows *sql.Rows, err error) ([]*models.RecurringObligation, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	var obligations []*models.RecurringObligation
	for rows.Next() {
		var o models.RecurringObligation
		var amount sql.NullString
		var paidDate sql.NullTime

		err := rows.Scan(
			&o.ID, &o.UserID, &o.Name, &o.Kind, &o.Cadence, &amount, &o.DueDate,
			&o.Paid, &paidDate, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}

		if amount.Valid {
			o.Amount, _ = decimal.NewFromString(amount.String)
		}
		if paidDate.Valid {
			o.PaidDate = &paidDate.Time
		}

		obligations = append(obligations, &o)
	}

	return obligations, nil
}

// UpdateObligationDueDate advances an obligation's due date
func (db *DB) UpdateObligationDueDate(id int, dueDate time.Time) error {
	query := `
		UPDATE obligations SET due_date = $2, paid = false, paid_date = NULL, updated_at = $3
		WHERE id = $1
	`
	result, err := db.conn.Exec(query, id, dueDate, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update obligation due date: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("obligation not found: %d", id)
	}
	return nil
}

// UpdateObligationPaid records or reverses a payment
func (db *DB) UpdateObligationPaid(id int, paid bool, paidDate *time.Time) error {
	query := `
		UPDATE obligations SET paid = $2, paid_date = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := db.conn.Exec(query, id, paid, paidDate, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update obligation payment: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("obligation not found: %d", id)
	}
	return nil
}

// CreateInstallments inserts a committee's full installment schedule in one
// transaction. The schedule is materialized exactly once; partial writes are
// rolled back.
func (db *DB) CreateInstallments(installments []models.Installment) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO installments (obligation_id, month, amount, paid, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	now := time.Now()
	for i := range installments {
		inst := &installments[i]
		err := tx.QueryRow(query, inst.ObligationID, inst.Month, inst.Amount, inst.Paid, now).Scan(&inst.ID)
		if err != nil {
			return fmt.Errorf("failed to create installment %d: %w", inst.Month, err)
		}
		inst.CreatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit installments: %w", err)
	}
	return nil
}

// GetInstallmentsByObligation retrieves a committee's schedule in month order
func (db *DB) GetInstallmentsByObligation(obligationID int) ([]models.Installment, error) {
	query := `
		SELECT id, obligation_id, month, amount, paid, paid_date, created_at
		FROM installments
		WHERE obligation_id = $1
		ORDER BY month ASC
	`
	rows, err := db.conn.Query(query, obligationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

	var installments []models.Installment
	for rows.Next() {
		var inst models.Installment
		var amount sql.NullString
		var paidDate sql.NullTime

		err := rows.Scan(&inst.ID, &inst.ObligationID, &inst.Month, &amount, &inst.Paid, &paidDate, &inst.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}

		if amount.Valid {
			inst.Amount, _ = decimal.NewFromString(amount.String)
		}
		if paidDate.Valid {
			inst.PaidDate = &paidDate.Time
		}

		installments = append(installments, inst)
	}

	return installments, nil
}

// UpdateInstallmentPaid records or reverses an installment payment
func (db *DB) UpdateInstallmentPaid(id int, paid bool, paidDate *time.Time) error {
	query := `UPDATE installments SET paid = $2, paid_date = $3 WHERE id = $1`
	result, err := db.conn.Exec(query, id, paid, paidDate)
	if err != nil {
		return fmt.Errorf("failed to update installment payment: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("installment not found: %d", id)
	}
	return nil
}
