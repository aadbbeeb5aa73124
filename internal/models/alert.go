package models

import "time"

// Alert direction constants
const (
	DirectionAbove = "ABOVE"
	DirectionBelow = "BELOW"
)

// Alert status constants
const (
	AlertStatusActive    = "ACTIVE"
	AlertStatusTriggered = "TRIGGERED"
)

// PriceAlert represents a user-configured price threshold watch.
// A notify-once alert moves to TRIGGERED on its first match; a recurring
// alert stays ACTIVE forever and is only rate-limited by its cooldown.
type PriceAlert struct {
	ID              int        `json:"id"`
	UserID          int        `json:"user_id"`
	Symbol          string     `json:"symbol"`
	Direction       string     `json:"direction"`
	TargetPrice     float64    `json:"target_price"`
	Status          string     `json:"status"`
	NotifyOnce      bool       `json:"notify_once"`
	CooldownMinutes int        `json:"cooldown_minutes"`
	LastCheckedAt   *time.Time `json:"last_checked_at,omitempty"`
	LastNotifiedAt  *time.Time `json:"last_notified_at,omitempty"`
	TriggeredAt     *time.Time `json:"triggered_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Quote is an ephemeral market price, fetched per evaluation cycle and never
// persisted as a source of truth.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}
