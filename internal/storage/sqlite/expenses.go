package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// CreateExpense persists an expense with its participant list and split
// entries in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, trip_id, payer_id, item, amount_cents, date, category, split_type, notes, receipt, payment_method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.TripID, expense.PayerID, expense.Item, expense.Amount.Cents,
		expense.Date.Unix(), expense.Category, string(expense.SplitType),
		expense.Notes, expense.Receipt, expense.PaymentMethod, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	// Participant position is load-bearing: equal splits apportion the
	// cent remainder in this order.
	for i, personID := range expense.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, person_id, position) VALUES (?, ?, ?)",
			expense.ID, personID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	switch expense.SplitType {
	case models.SplitPercentage:
		for personID, weight := range expense.Weights {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_splits (expense_id, person_id, weight, amount_cents) VALUES (?, ?, ?, NULL)",
				expense.ID, personID, weight,
			)
			if err != nil {
				return fmt.Errorf("failed to insert split weight: %w", err)
			}
		}
	case models.SplitCustom:
		for personID, amount := range expense.Amounts {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_splits (expense_id, person_id, weight, amount_cents) VALUES (?, ?, NULL, ?)",
				expense.ID, personID, amount.Cents,
			)
			if err != nil {
				return fmt.Errorf("failed to insert split amount: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExpenses returns a trip's expenses with participants and splits,
// oldest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, tripID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, payer_id, item, amount_cents, date, category, split_type, notes, receipt, payment_method, created_at
		 FROM expenses WHERE trip_id = ? ORDER BY date, created_at, id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		var amountCents, date int64
		var splitType string
		if err := rows.Scan(&exp.ID, &exp.TripID, &exp.PayerID, &exp.Item, &amountCents, &date,
			&exp.Category, &splitType, &exp.Notes, &exp.Receipt, &exp.PaymentMethod, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		exp.Amount = money.FromCents(amountCents)
		exp.Date = time.Unix(date, 0).UTC()
		exp.SplitType = models.SplitType(splitType)
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		if err := s.loadExpenseChildren(ctx, &expenses[i]); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// loadExpenseChildren fills in participants (ordered) and split entries.
func (s *SQLiteStore) loadExpenseChildren(ctx context.Context, exp *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT person_id FROM expense_participants WHERE expense_id = ? ORDER BY position",
		exp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var personID string
		if err := rows.Scan(&personID); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		exp.Participants = append(exp.Participants, personID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx,
		"SELECT person_id, weight, amount_cents FROM expense_splits WHERE expense_id = ?",
		exp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var personID string
		var weight sql.NullFloat64
		var amountCents sql.NullInt64
		if err := splitRows.Scan(&personID, &weight, &amountCents); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if weight.Valid {
			if exp.Weights == nil {
				exp.Weights = make(map[string]float64)
			}
			exp.Weights[personID] = weight.Float64
		}
		if amountCents.Valid {
			if exp.Amounts == nil {
				exp.Amounts = make(map[string]money.Money)
			}
			exp.Amounts[personID] = money.FromCents(amountCents.Int64)
		}
	}
	if err := splitRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; participants and splits cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(res, expenseID)
}
