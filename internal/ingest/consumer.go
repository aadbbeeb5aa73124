// Package ingest consumes already-parsed transaction events produced by the
// email-ingestion pipeline and stores them idempotently.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// TransactionRepository defines the store operations the consumer needs
type TransactionRepository interface {
	CreateCashTransaction(t *models.CashTransaction) error
	CashTransactionExists(source, externalID string) (bool, error)
}

// Consumer handles consuming parsed-transaction events from Kafka
type Consumer struct {
	reader *kafka.Reader
	repo   TransactionRepository
	logger zerolog.Logger
}

// NewConsumer creates a new Kafka consumer for transaction events
func NewConsumer(brokers []string, topic, groupID string, repo TransactionRepository, logger zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
		logger: logger,
	}
}

// Start begins consuming messages from Kafka until the context is cancelled.
// Per-message failures are logged and do not stop the loop.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().Str("topic", c.reader.Config().Topic).Msg("starting transaction consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("transaction consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				c.logger.Error().Err(err).Msg("error reading message")
				continue
			}

			if err := c.processMessage(msg); err != nil {
				c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("error processing message")
				// Continue processing other messages
			}
		}
	}
}

// ProcessMessage handles a single transaction event message.
func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.TransactionEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal transaction event: %w", err)
	}

	if event.EventType != "TRANSACTION_PARSED" {
		c.logger.Debug().Str("event_type", event.EventType).Msg("ignoring event type")
		return nil
	}

	// Duplicate delivery is expected from the parser; skip on replay.
	exists, err := c.repo.CashTransactionExists(event.Source, event.Data.ExternalID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate transaction: %w", err)
	}
	if exists {
		c.logger.Debug().
			Str("external_id", event.Data.ExternalID).
			Str("source", event.Source).
			Msg("transaction already exists, skipping")
		return nil
	}

	txn, err := convertEvent(event)
	if err != nil {
		return fmt.Errorf("failed to convert transaction event: %w", err)
	}

	if err := c.repo.CreateCashTransaction(txn); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	c.logger.Info().
		Str("txn_type", txn.TxnType).
		Float64("amount", txn.Amount).
		Str("external_id", txn.ExternalID).
		Msg("saved parsed transaction")

	return nil
}

func convertEvent(event models.TransactionEvent) (*models.CashTransaction, error) {
	if event.Data.TxnType != models.TxnTypeIncome && event.Data.TxnType != models.TxnTypeExpense {
		return nil, fmt.Errorf("unknown transaction type: %s", event.Data.TxnType)
	}
	if event.Data.Amount < 0 {
		return nil, fmt.Errorf("negative transaction amount: %f", event.Data.Amount)
	}

	occurredAt, err := time.Parse(time.RFC3339, event.Data.OccurredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse occurred_at: %w", err)
	}

	return &models.CashTransaction{
		UserID:     event.Data.UserID,
		TxnType:    event.Data.TxnType,
		Amount:     event.Data.Amount,
		Category:   event.Data.Category,
		Source:     event.Source,
		ExternalID: event.Data.ExternalID,
		OccurredAt: occurredAt,
	}, nil
}
