package models

import "time"

// NotificationEvent is published to the notification topic when an alert
// fires. Delivery (push, email) is handled by a downstream consumer.
type NotificationEvent struct {
	EventType string            `json:"event_type"`
	UserID    int               `json:"user_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// TransactionEvent is consumed from the ingestion topic. The email parser
// publishes one event per transaction it extracts.
type TransactionEvent struct {
	EventType string               `json:"event_type"`
	Source    string               `json:"source"`
	Data      TransactionEventData `json:"data"`
	Timestamp time.Time            `json:"timestamp"`
}

// TransactionEventData carries the parsed transaction fields
type TransactionEventData struct {
	ExternalID string  `json:"external_id"`
	UserID     int     `json:"user_id"`
	TxnType    string  `json:"txn_type"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}
