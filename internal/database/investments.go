package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// CreateInvestment inserts a new investment
func (db *DB) CreateInvestment(inv *models.Investment) error {
	query := `
		INSERT INTO investments (user_id, symbol, name, asset_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		inv.UserID, inv.Symbol, inv.Name, inv.AssetType, now, now,
	).Scan(&inv.ID)

	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	inv.CreatedAt = now
	inv.UpdatedAt = now
	return nil
}

// GetInvestmentByID retrieves an investment by ID
func (db *DB) GetInvestmentByID(id int) (*models.Investment, error) {
	query := `
		SELECT id, user_id, symbol, name, asset_type, created_at, updated_at
		FROM investments
		WHERE id = $1
	`
	var inv models.Investment
	var name, assetType sql.NullString

	err := db.conn.QueryRow(query, id).Scan(
		&inv.ID, &inv.UserID, &inv.Symbol, &name, &assetType, &inv.CreatedAt, &inv.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("investment not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	if name.Valid {
		inv.Name = name.String
	}
	if assetType.Valid {
		inv.AssetType = assetType.String
	}

	return &inv, nil
}

// GetInvestmentsByUser retrieves all investments for a user
func (db *DB) GetInvestmentsByUser(userID int) ([]*models.Investment, error) {
	query := `
		SELECT id, user_id, symbol, name, asset_type, created_at, updated_at
		FROM investments
		WHERE user_id = $1
		ORDER BY symbol
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments: %w", err)
	}
	defer rows.Close()

	var investments []*models.Investment
	for rows.Next() {
		var inv models.Investment
		var name, assetType sql.NullString

		err := rows.Scan(&inv.ID, &inv.UserID, &inv.Symbol, &name, &assetType, &inv.CreatedAt, &inv.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}

		if name.Valid {
			inv.Name = name.String
		}
		if assetType.Valid {
			inv.AssetType = assetType.String
		}

		investments = append(investments, &inv)
	}

	return investments, nil
}

// CreateLedgerEntry inserts a new ledger entry
func (db *DB) CreateLedgerEntry(e *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (
			investment_id, entry_type, quantity, amount, fees, taxes, executed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	now := time.Now()
	executedAt := e.ExecutedAt
	if executedAt.IsZero() {
		executedAt = now
	}

	err := db.conn.QueryRow(query,
		e.InvestmentID, e.EntryType, e.Quantity, e.Amount, e.Fees, e.Taxes, executedAt, now,
	).Scan(&e.ID)

	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	e.ExecutedAt = executedAt
	e.CreatedAt = now
	return nil
}

// GetLedgerEntriesByInvestment retrieves all entries for an investment
// ordered by execution date ascending, ready for the holding fold.
func (db *DB) GetLedgerEntriesByInvestment(investmentID int) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, investment_id, entry_type, quantity, amount, fees, taxes, executed_at, created_at
		FROM ledger_entries
		WHERE investment_id = $1
		ORDER BY executed_at ASC, id ASC
	`
	rows, err := db.conn.Query(query, investmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		err := rows.Scan(
			&e.ID, &e.InvestmentID, &e.EntryType, &e.Quantity, &e.Amount,
			&e.Fees, &e.Taxes, &e.ExecutedAt, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
