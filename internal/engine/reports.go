package engine

import (
	"sort"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// CategoryTotal is one row of the per-category spending breakdown.
type CategoryTotal struct {
	Category   string
	Amount     money.Money
	Percentage float64 // share of the trip total, 0-100
}

// PersonTotal is one row of the per-person payment breakdown.
type PersonTotal struct {
	PersonID   string
	Paid       money.Money
	Percentage float64 // share of all payments, 0-100
	Payments   int     // number of expenses this person paid for
}

// BudgetStatus describes spending against the trip budget.
type BudgetStatus struct {
	HasBudget  bool
	Budget     money.Money
	Spent      money.Money
	Remaining  money.Money
	Percentage float64 // spent as a share of budget, 0-100 (uncapped)
	OverBudget bool
}

// CategoryTotals sums expense amounts per category and attaches each
// category's share of the trip total. Expenses without a category fall into
// the "other" bucket. A trip with no expenses yields an empty slice; the
// percentage division is guarded so a zero total never divides by zero.
// Rows sort by amount descending, ties by category name ascending.
func CategoryTotals(expenses []models.Expense) []CategoryTotal {
	if len(expenses) == 0 {
		return nil
	}

	sums := make(map[string]money.Money)
	var total money.Money
	for i := range expenses {
		category := expenses[i].Category
		if category == "" {
			category = models.CategoryOther
		}
		sums[category] = sums[category].Add(expenses[i].Amount)
		total = total.Add(expenses[i].Amount)
	}

	rows := make([]CategoryTotal, 0, len(sums))
	for category, amount := range sums {
		row := CategoryTotal{Category: category, Amount: amount}
		if total.IsPositive() {
			row.Percentage = amount.Float() / total.Float() * 100
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Amount.Cmp(rows[j].Amount); c != 0 {
			return c > 0
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// PersonTotals reports, for every person in the roster, how much they paid
// across all expenses and how often they were the payer. People who never
// paid still appear with a zero row. Rows sort by amount paid descending,
// ties by person ID ascending.
func PersonTotals(people []models.Person, expenses []models.Expense) []PersonTotal {
	paid := make(map[string]money.Money, len(people))
	counts := make(map[string]int, len(people))
	for _, p := range people {
		paid[p.ID] = money.Money{}
	}

	var total money.Money
	for i := range expenses {
		exp := &expenses[i]
		paid[exp.PayerID] = paid[exp.PayerID].Add(exp.Amount)
		counts[exp.PayerID]++
		total = total.Add(exp.Amount)
	}

	rows := make([]PersonTotal, 0, len(people))
	for _, p := range people {
		row := PersonTotal{
			PersonID: p.ID,
			Paid:     paid[p.ID],
			Payments: counts[p.ID],
		}
		if total.IsPositive() {
			row.Percentage = row.Paid.Float() / total.Float() * 100
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Paid.Cmp(rows[j].Paid); c != 0 {
			return c > 0
		}
		return rows[i].PersonID < rows[j].PersonID
	})
	return rows
}

// PaymentFrequency counts, per person in the roster, the number of expenses
// they paid for. Every roster member appears, with zero when they never
// paid.
func PaymentFrequency(people []models.Person, expenses []models.Expense) map[string]int {
	freq := make(map[string]int, len(people))
	for _, p := range people {
		freq[p.ID] = 0
	}
	for i := range expenses {
		freq[expenses[i].PayerID]++
	}
	return freq
}

// FindNonPayers returns the people who appear as payer in zero expenses,
// in roster order. Being a participant does not count as paying; fronting
// an expense does, even when the payer is not a participant of it.
func FindNonPayers(people []models.Person, expenses []models.Expense) []models.Person {
	freq := PaymentFrequency(people, expenses)
	var nonPayers []models.Person
	for _, p := range people {
		if freq[p.ID] == 0 {
			nonPayers = append(nonPayers, p)
		}
	}
	return nonPayers
}

// BudgetStatusFor compares total spending against the trip budget. A trip
// without a budget returns a zero status with HasBudget false. A zero
// budget reports zero percentage rather than dividing by zero.
func BudgetStatusFor(trip *models.Trip, expenses []models.Expense) BudgetStatus {
	if trip.Budget == nil {
		return BudgetStatus{}
	}

	var spent money.Money
	for i := range expenses {
		spent = spent.Add(expenses[i].Amount)
	}

	status := BudgetStatus{
		HasBudget: true,
		Budget:    *trip.Budget,
		Spent:     spent,
		Remaining: trip.Budget.Sub(spent),
	}
	if trip.Budget.IsPositive() {
		status.Percentage = spent.Float() / trip.Budget.Float() * 100
	}
	status.OverBudget = status.Remaining.IsNegative()
	return status
}
