package engine

import (
	"fmt"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// ComputeBalances folds every expense and settlement of a trip into a net
// balance per person. The map covers every person in the roster, including
// those with no transactions, who appear with a zero balance.
//
// Positive means the person is owed money, negative means they owe money,
// zero means settled up. Folding order:
//
//  1. Each expense credits the payer the full amount and debits every
//     participant their resolved share. A payer who also participates is
//     debited their own share too; their net effect is amount - ownShare.
//  2. Each settlement credits the sender and debits the receiver: the
//     sender handed over real money, so what they owe shrinks (or what
//     they are owed grows), and the receiver's claim shrinks by the same.
//
// A single malformed expense or settlement aborts the whole computation
// with a wrapped ErrInvalidExpense or ErrInvalidSettlement; corrupt data is
// surfaced, never silently skipped.
func ComputeBalances(people []models.Person, expenses []models.Expense, settlements []models.Settlement) (map[string]money.Money, error) {
	roster := rosterSet(people)

	balances := make(map[string]money.Money, len(people))
	for _, p := range people {
		balances[p.ID] = money.Money{}
	}

	for i := range expenses {
		exp := &expenses[i]
		if !roster[exp.PayerID] {
			return nil, fmt.Errorf("%w: payer %q is not a trip member", ErrInvalidExpense, exp.PayerID)
		}
		shares, err := resolveShares(exp, roster)
		if err != nil {
			return nil, err
		}

		balances[exp.PayerID] = balances[exp.PayerID].Add(exp.Amount)
		for _, id := range exp.Participants {
			balances[id] = balances[id].Sub(shares[id])
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if s.FromPersonID == s.ToPersonID {
			return nil, fmt.Errorf("%w: from and to are the same person %q", ErrInvalidSettlement, s.FromPersonID)
		}
		if !s.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount %s is not positive", ErrInvalidSettlement, s.Amount)
		}
		if !roster[s.FromPersonID] {
			return nil, fmt.Errorf("%w: sender %q is not a trip member", ErrInvalidSettlement, s.FromPersonID)
		}
		if !roster[s.ToPersonID] {
			return nil, fmt.Errorf("%w: receiver %q is not a trip member", ErrInvalidSettlement, s.ToPersonID)
		}

		balances[s.FromPersonID] = balances[s.FromPersonID].Add(s.Amount)
		balances[s.ToPersonID] = balances[s.ToPersonID].Sub(s.Amount)
	}

	return balances, nil
}
