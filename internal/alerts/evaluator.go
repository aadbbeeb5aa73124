// Package alerts evaluates active price alerts against market quotes.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/finance-tracker-system/internal/models"
)

// QuoteService looks up current prices. Unresolvable symbols are omitted
// from the result, never reported as an error for the whole set.
type QuoteService interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error)
}

// Notifier dispatches a user notification. Fire-and-forget: delivery is the
// downstream consumer's concern.
type Notifier interface {
	Dispatch(ctx context.Context, event models.NotificationEvent) error
}

// AlertStore defines the record-store operations the evaluator needs
type AlertStore interface {
	GetActiveAlerts() ([]*models.PriceAlert, error)
	MarkAlertChecked(id int, checkedAt time.Time) error
	MarkAlertTriggered(a *models.PriceAlert) error
}

// Matches reports whether the price satisfies the alert's threshold.
func Matches(a *models.PriceAlert, price float64) bool {
	if a.Direction == models.DirectionAbove {
		return price >= a.TargetPrice
	}
	return price <= a.TargetPrice
}

// InCooldown reports whether the alert notified too recently to fire again.
func InCooldown(a *models.PriceAlert, now time.Time) bool {
	if a.LastNotifiedAt == nil {
		return false
	}
	return now.Sub(*a.LastNotifiedAt) < time.Duration(a.CooldownMinutes)*time.Minute
}

// Evaluator batch-checks active alerts against fetched quotes
type Evaluator struct {
	store    AlertStore
	quotes   QuoteService
	notifier Notifier
	logger   zerolog.Logger
}

// NewEvaluator creates a new Evaluator
func NewEvaluator(store AlertStore, quotes QuoteService, notifier Notifier, logger zerolog.Logger) *Evaluator {
	return &Evaluator{store: store, quotes: quotes, notifier: notifier, logger: logger}
}

// Summary reports the outcome of an evaluation batch
type Summary struct {
	Evaluated int `json:"evaluated"`
	Triggered int `json:"triggered"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// EvaluateAll runs one evaluation cycle over every active alert.
//
// Symbols are deduplicated and fetched once. An alert whose quote is missing
// is skipped entirely, with no state update, so a data-provider gap never
// advances evaluation state. A matched alert outside its cooldown dispatches
// a notification and persists its trigger transition even when dispatch
// fails; one missed push is less harmful than double-firing. Per-alert
// failures are logged and the batch continues.
func (e *Evaluator) EvaluateAll(ctx context.Context, now time.Time) (Summary, error) {
	var summary Summary

	alerts, err := e.store.GetActiveAlerts()
	if err != nil {
		return summary, fmt.Errorf("failed to load active alerts: %w", err)
	}
	if len(alerts) == 0 {
		return summary, nil
	}

	quotes, err := e.quotes.GetQuotes(ctx, uniqueSymbols(alerts))
	if err != nil {
		return summary, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	for _, a := range alerts {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		quote, ok := quotes[a.Symbol]
		if !ok {
			summary.Skipped++
			continue
		}

		if !Matches(a, quote.Price) || InCooldown(a, now) {
			if err := e.store.MarkAlertChecked(a.ID, now); err != nil {
				summary.Failed++
				e.logger.Error().Err(err).Int("alert_id", a.ID).Msg("failed to mark alert checked")
				continue
			}
			summary.Evaluated++
			continue
		}

		e.trigger(ctx, a, quote.Price, now, &summary)
	}

	return summary, nil
}

func (e *Evaluator) trigger(ctx context.Context, a *models.PriceAlert, price float64, now time.Time, summary *Summary) {
	event := models.NotificationEvent{
		EventType: "PRICE_ALERT_TRIGGERED",
		UserID:    a.UserID,
		Title:     fmt.Sprintf("%s price alert", a.Symbol),
		Message: fmt.Sprintf("%s is at %.2f, %s your target of %.2f",
			a.Symbol, price, directionWord(a.Direction), a.TargetPrice),
		Metadata: map[string]string{
			"symbol":    a.Symbol,
			"direction": a.Direction,
			"price":     fmt.Sprintf("%.2f", price),
		},
		Timestamp: now,
	}
	if err := e.notifier.Dispatch(ctx, event); err != nil {
		e.logger.Error().Err(err).Int("alert_id", a.ID).Str("symbol", a.Symbol).
			Msg("notification dispatch failed, persisting trigger state anyway")
	}

	a.Status = models.AlertStatusActive
	if a.NotifyOnce {
		a.Status = models.AlertStatusTriggered
	}
	a.TriggeredAt = &now
	a.LastCheckedAt = &now
	a.LastNotifiedAt = &now

	if err := e.store.MarkAlertTriggered(a); err != nil {
		summary.Failed++
		e.logger.Error().Err(err).Int("alert_id", a.ID).Msg("failed to persist alert trigger")
		return
	}
	summary.Evaluated++
	summary.Triggered++
}

func uniqueSymbols(alerts []*models.PriceAlert) []string {
	seen := make(map[string]struct{}, len(alerts))
	symbols := make([]string, 0, len(alerts))
	for _, a := range alerts {
		if _, ok := seen[a.Symbol]; ok {
			continue
		}
		seen[a.Symbol] = struct{}{}
		symbols = append(symbols, a.Symbol)
	}
	return symbols
}

func directionWord(direction string) string {
	if direction == models.DirectionAbove {
		return "above"
	}
	return "below"
}
