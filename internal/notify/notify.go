// Package notify delivers ledger event notifications.
//
// Real email delivery stays out of scope. Notifier is an injected
// dependency of the service layer: the default implementation logs the
// would-be message, and an AMQP-backed implementation publishes events for
// an external consumer. Notification failures are reported to the caller
// but must never fail the operation that triggered them.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/tripledger/internal/money"
)

// Event types.
const (
	EventExpenseAdded       = "expense_added"
	EventSettlementRecorded = "settlement_recorded"
)

// Event describes something that happened on a trip ledger.
type Event struct {
	Type         string    `json:"type"`
	TripID       string    `json:"trip_id"`
	TripName     string    `json:"trip_name"`
	ActorName    string    `json:"actor_name"`    // payer or settlement sender
	ActorEmail   string    `json:"actor_email"`   // optional
	Item         string    `json:"item"`          // expense item or settlement method
	Amount       string    `json:"amount"`        // decimal string, e.g. "42.50"
	Currency     string    `json:"currency"`
	Participants []string  `json:"participants"` // display names
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewEvent builds an Event with the amount rendered as a decimal string.
func NewEvent(eventType, tripID, tripName string, amount money.Money, currency string) Event {
	return Event{
		Type:       eventType,
		TripID:     tripID,
		TripName:   tripName,
		Amount:     amount.String(),
		Currency:   currency,
		OccurredAt: time.Now().UTC(),
	}
}

// Notifier delivers ledger events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
	Close() error
}

// LogNotifier simulates delivery by logging the event.
type LogNotifier struct{}

// NewLogNotifier returns a Notifier that only logs.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the event at info level.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	slog.InfoContext(ctx, "Notification (simulated)",
		"type", event.Type,
		"trip", event.TripName,
		"actor", event.ActorName,
		"item", event.Item,
		"amount", event.Amount,
		"currency", event.Currency,
		"participants", event.Participants,
	)
	return nil
}

// Close is a no-op.
func (n *LogNotifier) Close() error { return nil }
