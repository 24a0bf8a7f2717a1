// Package export serializes derived ledger values to CSV.
//
// Column orders are fixed and part of the external contract:
// balances export as "Person, Balance", settlement plans as
// "From, To, Amount", category breakdowns as "Category, Amount,
// Percentage". Amounts are plain decimal strings; currency symbols and
// locale formatting stay with the consumer.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/mmynk/tripledger/internal/engine"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// WriteBalances writes one row per roster member, in roster order.
func WriteBalances(w io.Writer, people []models.Person, balances map[string]money.Money) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Person", "Balance"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range people {
		if err := cw.Write([]string{p.Name, balances[p.ID].String()}); err != nil {
			return fmt.Errorf("write balance row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePlan writes one row per settlement plan step, in plan order.
// Person IDs resolve to display names through the roster; an ID missing
// from the roster falls back to the raw ID rather than failing the export.
func WritePlan(w io.Writer, people []models.Person, steps []engine.PlanStep) error {
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.Name
	}
	displayName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"From", "To", "Amount"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, step := range steps {
		row := []string{displayName(step.From), displayName(step.To), step.Amount.String()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write plan row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCategories writes one row per category, in breakdown order
// (amount descending). Percentages render with one decimal place.
func WriteCategories(w io.Writer, totals []engine.CategoryTotal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Amount", "Percentage"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range totals {
		record := []string{row.Category, row.Amount.String(), fmt.Sprintf("%.1f", row.Percentage)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write category row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFrequency writes one row per roster member with their payment
// count, sorted by count descending then name.
func WriteFrequency(w io.Writer, people []models.Person, freq map[string]int) error {
	rows := make([]models.Person, len(people))
	copy(rows, people)
	sort.SliceStable(rows, func(i, j int) bool {
		if freq[rows[i].ID] != freq[rows[j].ID] {
			return freq[rows[i].ID] > freq[rows[j].ID]
		}
		return rows[i].Name < rows[j].Name
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Person", "Payments"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range rows {
		if err := cw.Write([]string{p.Name, fmt.Sprintf("%d", freq[p.ID])}); err != nil {
			return fmt.Errorf("write frequency row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
