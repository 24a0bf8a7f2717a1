package engine

import (
	"sort"

	"github.com/mmynk/tripledger/internal/money"
)

// PlanStep is one transfer in a settlement plan: From pays To Amount.
// Amount is always strictly positive.
type PlanStep struct {
	From   string
	To     string
	Amount money.Money
}

// party is a mutable working entry the planner consumes. Inputs stay
// untouched; all matching happens on these copies.
type party struct {
	id        string
	remaining money.Money
}

// PlanSettlement produces the transfer sequence that zeroes all balances,
// using greedy largest-against-largest matching:
//
//  1. People with negative balances become debtors (tracked by magnitude),
//     people with positive balances become creditors. Zero balances are
//     already settled and drop out.
//  2. Both lists sort descending by magnitude; ties break by person ID
//     ascending, so the plan is deterministic regardless of map iteration
//     order.
//  3. The largest debtor pays the largest creditor min(debt, credit).
//     A fully paid creditor is removed and the same debtor continues with
//     the next creditor; a cleared debtor advances to the next debtor.
//
// When balances sum to zero (which ComputeBalances guarantees for
// conforming splits) the plan fully clears both lists in at most
// len(balances)-1 steps. The greedy matching is the accepted practical
// heuristic; it is transaction-minimal for the common case of already
// netted balances but not proven minimal for every distribution.
func PlanSettlement(balances map[string]money.Money) []PlanStep {
	var debtors, creditors []party
	for id, bal := range balances {
		switch {
		case bal.IsNegative():
			debtors = append(debtors, party{id: id, remaining: bal.Abs()})
		case bal.IsPositive():
			creditors = append(creditors, party{id: id, remaining: bal})
		}
	}

	byMagnitude := func(parties []party) func(i, j int) bool {
		return func(i, j int) bool {
			if c := parties[i].remaining.Cmp(parties[j].remaining); c != 0 {
				return c > 0
			}
			return parties[i].id < parties[j].id
		}
	}
	sort.Slice(debtors, byMagnitude(debtors))
	sort.Slice(creditors, byMagnitude(creditors))

	var steps []PlanStep
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := debtor.remaining
		if creditor.remaining.Cmp(amount) < 0 {
			amount = creditor.remaining
		}

		if amount.IsPositive() {
			steps = append(steps, PlanStep{
				From:   debtor.id,
				To:     creditor.id,
				Amount: amount,
			})
		}

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if creditor.remaining.IsZero() {
			j++
		}
		if debtor.remaining.IsZero() {
			i++
		}
	}

	return steps
}

// ApplyPlan replays a settlement plan onto a copy of balances and returns
// the result. Every entry of a plan produced by PlanSettlement ends at
// zero when the input balances summed to zero. The input map is not
// modified.
func ApplyPlan(balances map[string]money.Money, steps []PlanStep) map[string]money.Money {
	out := make(map[string]money.Money, len(balances))
	for id, bal := range balances {
		out[id] = bal
	}
	for _, step := range steps {
		out[step.From] = out[step.From].Add(step.Amount)
		out[step.To] = out[step.To].Sub(step.Amount)
	}
	return out
}
