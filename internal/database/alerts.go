package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// CreatePriceAlert inserts a new price alert
func (db *DB) CreatePriceAlert(a *models.PriceAlert) error {
	query := `
		INSERT INTO price_alerts (
			user_id, symbol, direction, target_price, status, notify_once,
			cooldown_minutes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	now := time.Now()
	if a.Status == "" {
		a.Status = models.AlertStatusActive
	}
	if a.CooldownMinutes < 1 {
		a.CooldownMinutes = 1
	}

	err := db.conn.QueryRow(query,
		a.UserID, a.Symbol, a.Direction, a.TargetPrice, a.Status, a.NotifyOnce,
		a.CooldownMinutes, now, now,
	).Scan(&a.ID)

	if err != nil {
		return fmt.Errorf("failed to create price alert: %w", err)
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// GetPriceAlertByID retrieves a price alert by ID
func (db *DB) GetPriceAlertByID(id int) (*models.PriceAlert, error) {
	query := `
		SELECT id, user_id, symbol, direction, target_price, status, notify_once,
		       cooldown_minutes, last_checked_at, last_notified_at, triggered_at,
		       created_at, updated_at
		FROM price_alerts
		WHERE id = $1
	`
	var a models.PriceAlert
	var lastCheckedAt, lastNotifiedAt, triggeredAt sql.NullTime

	err := db.conn.QueryRow(query, id).Scan(
		&a.ID, &a.UserID, &a.Symbol, &a.Direction, &a.TargetPrice, &a.Status, &a.NotifyOnce,
		&a.CooldownMinutes, &lastCheckedAt, &lastNotifiedAt, &triggeredAt,
		&a.CreatedAt, &a.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("price alert not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price alert: %w", err)
	}

	if lastCheckedAt.Valid {
		a.LastCheckedAt = &lastCheckedAt.Time
	}
	if lastNotifiedAt.Valid {
		a.LastNotifiedAt = &lastNotifiedAt.Time
	}
	if triggeredAt.Valid {
		a.TriggeredAt = &triggeredAt.Time
	}

	return &a, nil
}

// GetActiveAlerts retrieves all alerts still eligible for evaluation
func (db *DB) GetActiveAlerts() ([]*models.PriceAlert, error) {
	query := `
		SELECT id, user_id, symbol, direction, target_price, status, notify_once,
		       cooldown_minutes, last_checked_at, last_notified_at, triggered_at,
		       created_at, updated_at
		FROM price_alerts
		WHERE status = $1
		ORDER BY symbol, id
	`
	return db.scanPriceAlerts(db.conn.Query(query, models.AlertStatusActive))
}

// GetAlertsByUser retrieves all alerts for a user
func (db *DB) GetAlertsByUser(userID int) ([]*models.PriceAlert, error) {
	query := `
		SELECT id, user_id, symbol, direction, target_price, status, notify_once,
		       cooldown_minutes, last_checked_at, last_notified_at, triggered_at,
		       created_at, updated_at
		FROM price_alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return db.scanPriceAlerts(db.conn.Query(query, userID))
}

func (db *DB) scanPriceAlerts(rows *sql.Rows, err error) ([]*models.PriceAlert, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query price alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.PriceAlert
	for rows.Next() {
		var a models.PriceAlert
		var lastCheckedAt, lastNotifiedAt, triggeredAt sql.NullTime

		err := rows.Scan(
			&a.ID, &a.UserID, &a.Symbol, &a.Direction, &a.TargetPrice, &a.Status, &a.NotifyOnce,
			&a.CooldownMinutes, &lastCheckedAt, &lastNotifiedAt, &triggeredAt,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price alert: %w", err)
		}

		if lastCheckedAt.Valid {
			a.LastCheckedAt = &lastCheckedAt.Time
		}
		if lastNotifiedAt.Valid {
			a.LastNotifiedAt = &lastNotifiedAt.Time
		}
		if triggeredAt.Valid {
			a.TriggeredAt = &triggeredAt.Time
		}

		alerts = append(alerts, &a)
	}

	return alerts, nil
}

// MarkAlertChecked stamps the last evaluation time without touching
// trigger or notification state.
func (db *DB) MarkAlertChecked(id int, checkedAt time.Time) error {
	query := `UPDATE price_alerts SET last_checked_at = $2, updated_at = $2 WHERE id = $1`
	_, err := db.conn.Exec(query, id, checkedAt)
	if err != nil {
		return fmt.Errorf("failed to mark alert checked: %w", err)
	}
	return nil
}

// MarkAlertTriggered persists a fired alert's full state transition
func (db *DB) MarkAlertTriggered(a *models.PriceAlert) error {
	query := `
		UPDATE price_alerts SET
			status = $2, triggered_at = $3, last_checked_at = $4, last_notified_at = $5,
			updated_at = $6
		WHERE id = $1
	`
	a.UpdatedAt = time.Now()
	result, err := db.conn.Exec(query,
		a.ID, a.Status, a.TriggeredAt, a.LastCheckedAt, a.LastNotifiedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark alert triggered: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("price alert not found: %d", a.ID)
	}
	return nil
}

// DeletePriceAlert removes a price alert by ID
func (db *DB) DeletePriceAlert(id int) error {
	query := `DELETE FROM price_alerts WHERE id = $1`
	result, err := db.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete price alert: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("price alert not found: %d", id)
	}
	return nil
}
