// Package engine is the split ledger engine: pure computations turning a
// trip's expense records into per-person balances, a minimal settlement
// plan, and aggregate reports.
//
// Every function here is a pure function of its inputs. Nothing is cached,
// nothing is mutated, nothing is logged; results are recomputed from the
// full snapshot on every call. That keeps derived state impossible to get
// stale and makes every computation trivially testable.
package engine

import (
	"errors"
	"fmt"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

var (
	// ErrInvalidExpense marks an expense the engine cannot resolve:
	// empty participants, a non-positive amount, or a participant or
	// payer outside the trip roster.
	ErrInvalidExpense = errors.New("invalid expense")

	// ErrInvalidSettlement marks a settlement with from == to or a
	// non-positive amount.
	ErrInvalidSettlement = errors.New("invalid settlement")
)

// rosterSet builds a membership set from the trip roster.
func rosterSet(people []models.Person) map[string]bool {
	set := make(map[string]bool, len(people))
	for _, p := range people {
		set[p.ID] = true
	}
	return set
}

// ResolveShares computes each participant's owed share of an expense.
// The returned map covers every ID in expense.Participants.
//
// For an equal split the shares sum to the amount exactly: the cent
// remainder of the floor division is handed out one cent at a time in
// participant order. Percentage and custom shares are taken at face value
// and are not forced to sum to the amount; when the caller-level contract
// (weights summing to 100, amounts summing to the total) was violated, the
// policy-implied total is returned as-is rather than silently corrected.
func ResolveShares(expense *models.Expense, people []models.Person) (map[string]money.Money, error) {
	return resolveShares(expense, rosterSet(people))
}

func resolveShares(expense *models.Expense, roster map[string]bool) (map[string]money.Money, error) {
	if len(expense.Participants) == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrInvalidExpense)
	}
	if !expense.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount %s is not positive", ErrInvalidExpense, expense.Amount)
	}
	for _, id := range expense.Participants {
		if !roster[id] {
			return nil, fmt.Errorf("%w: participant %q is not a trip member", ErrInvalidExpense, id)
		}
	}

	shares := make(map[string]money.Money, len(expense.Participants))
	switch expense.SplitType {
	case models.SplitEqual:
		split := expense.Amount.SplitEqual(len(expense.Participants))
		for i, id := range expense.Participants {
			shares[id] = split[i]
		}
	case models.SplitPercentage:
		for _, id := range expense.Participants {
			shares[id] = expense.Amount.Percent(expense.Weights[id])
		}
	case models.SplitCustom:
		for _, id := range expense.Participants {
			shares[id] = expense.Amounts[id]
		}
	default:
		return nil, fmt.Errorf("%w: unknown split type %q", ErrInvalidExpense, expense.SplitType)
	}
	return shares, nil
}
