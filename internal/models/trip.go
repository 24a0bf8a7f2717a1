package models

import (
	"time"

	"github.com/mmynk/tripledger/internal/money"
)

// Trip represents a shared trip whose expenses are tracked together.
// All amounts on a trip are interpreted in its single currency; the ledger
// never converts between currencies.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Goa 2025").
	Name string

	// Currency is the ISO 4217 style 3-letter code (e.g., "USD", "EUR").
	Currency string

	// Budget is the optional trip budget. Nil means no budget was set,
	// which is distinct from a zero budget.
	Budget *money.Money

	// StartDate and EndDate bound the trip when set.
	StartDate *time.Time
	EndDate   *time.Time

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}

// Person represents a member of a trip's roster.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// TripID is the trip this person belongs to. A person belongs to
	// exactly one trip.
	TripID string

	// Name is the display label shown in balances and exports.
	Name string

	// Email is optional; used only by the notification simulation.
	Email string

	// Color is an optional display hint for UIs.
	Color string
}

// TripSnapshot is the fully materialized, immutable input set for one trip
// that the ledger engine consumes. The storage layer assembles it; the
// engine never mutates it.
type TripSnapshot struct {
	Trip        Trip
	People      []Person
	Expenses    []Expense
	Settlements []Settlement
}
