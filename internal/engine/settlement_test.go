package engine

import (
	"testing"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

func balancesOf(entries map[string]int64) map[string]money.Money {
	out := make(map[string]money.Money, len(entries))
	for id, c := range entries {
		out[id] = money.FromCents(c)
	}
	return out
}

func TestPlanSettlement(t *testing.T) {
	tests := []struct {
		name         string
		balances     map[string]int64
		validateFunc func(t *testing.T, steps []PlanStep)
	}{
		{
			name:     "empty balances",
			balances: map[string]int64{},
			validateFunc: func(t *testing.T, steps []PlanStep) {
				if len(steps) != 0 {
					t.Errorf("got %d steps, want 0", len(steps))
				}
			},
		},
		{
			name:     "already settled",
			balances: map[string]int64{"alice": 0, "bob": 0},
			validateFunc: func(t *testing.T, steps []PlanStep) {
				if len(steps) != 0 {
					t.Errorf("got %d steps, want 0", len(steps))
				}
			},
		},
		{
			name:     "single debt pair",
			balances: map[string]int64{"alice": 10000, "bob": -10000},
			validateFunc: func(t *testing.T, steps []PlanStep) {
				if len(steps) != 1 {
					t.Fatalf("got %d steps, want 1", len(steps))
				}
				if steps[0].From != "bob" || steps[0].To != "alice" || steps[0].Amount.Cents != 10000 {
					t.Errorf("step = %+v, want bob->alice 10000", steps[0])
				}
			},
		},
		{
			name:     "one creditor two debtors",
			balances: map[string]int64{"alice": 20000, "bob": -10000, "carol": -10000},
			validateFunc: func(t *testing.T, steps []PlanStep) {
				if len(steps) != 2 {
					t.Fatalf("got %d steps, want 2", len(steps))
				}
				var toAlice money.Money
				for _, s := range steps {
					if s.To != "alice" {
						t.Errorf("step %+v pays %s, want alice", s, s.To)
					}
					toAlice = toAlice.Add(s.Amount)
				}
				if toAlice.Cents != 20000 {
					t.Errorf("alice receives %d, want 20000", toAlice.Cents)
				}
			},
		},
		{
			name: "largest debtor pays largest creditor first",
			balances: map[string]int64{
				"alice": 5000,
				"bob":   15000,
				"carol": -12000,
				"dave":  -8000,
			},
			validateFunc: func(t *testing.T, steps []PlanStep) {
				if len(steps) != 3 {
					t.Fatalf("got %d steps, want 3", len(steps))
				}
				// carol (120) pays bob (150) in full, dave covers the
				// remaining 30 of bob then alice's 50.
				want := []PlanStep{
					{From: "carol", To: "bob", Amount: cents(12000)},
					{From: "dave", To: "bob", Amount: cents(3000)},
					{From: "dave", To: "alice", Amount: cents(5000)},
				}
				for i, s := range want {
					if steps[i] != s {
						t.Errorf("step[%d] = %+v, want %+v", i, steps[i], s)
					}
				}
			},
		},
		{
			name: "magnitude ties break by person id",
			balances: map[string]int64{
				"zoe": -5000,
				"amy": -5000,
				"bea": 5000,
				"cal": 5000,
			},
			validateFunc: func(t *testing.T, steps []PlanStep) {
				want := []PlanStep{
					{From: "amy", To: "bea", Amount: cents(5000)},
					{From: "zoe", To: "cal", Amount: cents(5000)},
				}
				if len(steps) != len(want) {
					t.Fatalf("got %d steps, want %d", len(steps), len(want))
				}
				for i, s := range want {
					if steps[i] != s {
						t.Errorf("step[%d] = %+v, want %+v", i, steps[i], s)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := balancesOf(tt.balances)
			steps := PlanSettlement(balances)

			for _, s := range steps {
				if s.From == s.To {
					t.Errorf("step %+v transfers to self", s)
				}
				if !s.Amount.IsPositive() {
					t.Errorf("step %+v has non-positive amount", s)
				}
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, steps)
			}
		})
	}
}

func TestPlanSettlementZeroesBalances(t *testing.T) {
	// Applying every step must leave all entries at zero, in at most
	// len(people)-1 steps.
	cases := []map[string]int64{
		{"a": 10000, "b": -10000},
		{"a": 20000, "b": -10000, "c": -10000},
		{"a": 5000, "b": 15000, "c": -12000, "d": -8000},
		{"a": 1, "b": -1, "c": 0},
		{"a": 33334, "b": 33333, "c": -33333, "d": -33334, "e": 0},
	}
	for _, entries := range cases {
		balances := balancesOf(entries)
		steps := PlanSettlement(balances)

		if len(steps) > len(entries)-1 {
			t.Errorf("balances %v: %d steps exceeds %d", entries, len(steps), len(entries)-1)
		}

		settled := ApplyPlan(balances, steps)
		for id, bal := range settled {
			if !bal.IsZero() {
				t.Errorf("balances %v: %s ends at %s, want 0.00", entries, id, bal)
			}
		}
		// The original map must be untouched.
		for id, c := range entries {
			if balances[id].Cents != c {
				t.Errorf("balances %v: input entry %s was mutated", entries, id)
			}
		}
	}
}

func TestPlanSettlementDeterministic(t *testing.T) {
	balances := balancesOf(map[string]int64{
		"a": 7000, "b": 3000, "c": -4000, "d": -6000,
	})
	first := PlanSettlement(balances)
	for range 10 {
		again := PlanSettlement(balances)
		if len(again) != len(first) {
			t.Fatalf("plan length changed between runs: %d vs %d", len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("plan changed between runs: %+v vs %+v", again[i], first[i])
			}
		}
	}
}

func TestPlanSettlementFromComputedBalances(t *testing.T) {
	// The concrete scenario: one equal expense of 300 paid by alice for
	// three people settles with exactly two transfers of 100 to alice.
	people := roster("alice", "bob", "carol")
	expenses := []models.Expense{{
		PayerID:      "alice",
		Amount:       cents(30000),
		Participants: []string{"alice", "bob", "carol"},
		SplitType:    models.SplitEqual,
	}}

	balances, err := ComputeBalances(people, expenses, nil)
	if err != nil {
		t.Fatalf("ComputeBalances failed: %v", err)
	}
	steps := PlanSettlement(balances)
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}
	var toAlice money.Money
	for _, s := range steps {
		if s.To != "alice" || s.Amount.Cents != 10000 {
			t.Errorf("step %+v, want 100.00 to alice", s)
		}
		toAlice = toAlice.Add(s.Amount)
	}
	if toAlice.Cents != 20000 {
		t.Errorf("alice receives %d, want 20000", toAlice.Cents)
	}
}
