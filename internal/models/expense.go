package models

import (
	"time"

	"github.com/mmynk/tripledger/internal/money"
)

// SplitType selects the rule that determines each participant's owed share
// of an expense.
type SplitType string

const (
	// SplitEqual divides the amount evenly across participants, with the
	// cent remainder apportioned deterministically in participant order.
	SplitEqual SplitType = "equal"

	// SplitPercentage assigns each participant amount * weight / 100,
	// using the per-person weights in Expense.Weights.
	SplitPercentage SplitType = "percentage"

	// SplitCustom assigns each participant the absolute amount recorded
	// in Expense.Amounts.
	SplitCustom SplitType = "custom"
)

// Valid reports whether t is one of the known split types.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitPercentage, SplitCustom:
		return true
	}
	return false
}

// Expense represents a payment made by one person on behalf of a set of
// participants.
//
// The payer need not be a participant: someone can front money exclusively
// for others. When the payer does participate, they still owe their own
// share and their net effect is amount minus that share.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the owning trip.
	TripID string

	// PayerID is the person who paid the full amount.
	PayerID string

	// Item is the description of what was bought.
	Item string

	// Amount is the full amount paid. Always positive.
	Amount money.Money

	// Participants are the people sharing this expense, in a fixed order.
	// The order matters: equal splits apportion the cent remainder to
	// participants in this order. Must be non-empty.
	Participants []string

	// Date is when the expense happened.
	Date time.Time

	// Category tags the expense for reporting (see Categories).
	Category string

	// SplitType selects the share rule.
	SplitType SplitType

	// Weights holds percentage-split weights in [0,100] keyed by person ID.
	// Only read when SplitType is SplitPercentage. The weights are not
	// required to sum to 100; validating that is the caller's contract,
	// not the engine's. A participant missing from the map has weight 0.
	Weights map[string]float64

	// Amounts holds custom-split absolute shares keyed by person ID.
	// Only read when SplitType is SplitCustom. Not required to sum to
	// Amount. A participant missing from the map owes nothing.
	Amounts map[string]money.Money

	// Notes, Receipt and PaymentMethod are optional metadata.
	Notes         string
	Receipt       string
	PaymentMethod string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Settlement represents a real money transfer between two people that
// reduces their outstanding debt. Recording one raises the payer's net
// balance and lowers the receiver's.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// TripID is the owning trip.
	TripID string

	// FromPersonID is who paid (the debtor settling up).
	FromPersonID string

	// ToPersonID is who received the payment. Must differ from FromPersonID.
	ToPersonID string

	// Amount is the transferred amount. Always positive.
	Amount money.Money

	// Date is when the payment happened.
	Date time.Time

	// Method tags how the payment was made (see PaymentMethods).
	Method string

	// Notes is optional.
	Notes string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
