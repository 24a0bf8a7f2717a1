package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/storage"
)

// CreateTrip persists a new trip to the database.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	var budget *int64
	if trip.Budget != nil {
		budget = &trip.Budget.Cents
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO trips (id, name, currency, budget_cents, start_date, end_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		trip.ID, trip.Name, trip.Currency, budget, unixOrNil(trip.StartDate), unixOrNil(trip.EndDate), trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by ID.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	var budget sql.NullInt64
	var start, end sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, currency, budget_cents, start_date, end_date, created_at FROM trips WHERE id = ?",
		tripID,
	).Scan(&trip.ID, &trip.Name, &trip.Currency, &budget, &start, &end, &trip.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	if budget.Valid {
		b := money.FromCents(budget.Int64)
		trip.Budget = &b
	}
	trip.StartDate = timeOrNil(start)
	trip.EndDate = timeOrNil(end)
	return trip, nil
}

// ListTrips returns all trips, newest first.
func (s *SQLiteStore) ListTrips(ctx context.Context) ([]models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, currency, budget_cents, start_date, end_date, created_at FROM trips ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var trip models.Trip
		var budget, start, end sql.NullInt64
		if err := rows.Scan(&trip.ID, &trip.Name, &trip.Currency, &budget, &start, &end, &trip.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		if budget.Valid {
			b := money.FromCents(budget.Int64)
			trip.Budget = &b
		}
		trip.StartDate = timeOrNil(start)
		trip.EndDate = timeOrNil(end)
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// DeleteTrip removes a trip and everything attached to it. Children are
// deleted explicitly in dependency order; the people foreign keys carry no
// cascade, so leaning on cascade here would trip over expense rows still
// referencing people mid-delete.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, tripID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM settlements WHERE trip_id = ?",
		"DELETE FROM expense_splits WHERE expense_id IN (SELECT id FROM expenses WHERE trip_id = ?)",
		"DELETE FROM expense_participants WHERE expense_id IN (SELECT id FROM expenses WHERE trip_id = ?)",
		"DELETE FROM expenses WHERE trip_id = ?",
		"DELETE FROM people WHERE trip_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, tripID); err != nil {
			return fmt.Errorf("failed to delete trip children: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if err := requireAffected(res, tripID); err != nil {
		return err
	}
	return tx.Commit()
}

// CreatePerson adds a person to a trip's roster.
func (s *SQLiteStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	// Position preserves roster order across listings.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO people (id, trip_id, name, email, color, position)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM people WHERE trip_id = ?))`,
		person.ID, person.TripID, person.Name, person.Email, person.Color, person.TripID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

// ListPeople returns a trip's roster in insertion order.
func (s *SQLiteStore) ListPeople(ctx context.Context, tripID string) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, trip_id, name, email, color FROM people WHERE trip_id = ? ORDER BY position",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.TripID, &p.Name, &p.Email, &p.Color); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return people, nil
}

// DeletePerson removes a person from the roster. The people foreign keys
// carry no cascade, so this fails while any expense or settlement still
// references them.
func (s *SQLiteStore) DeletePerson(ctx context.Context, personID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", personID)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return requireAffected(res, personID)
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

// requireAffected converts a zero-row result into ErrNotFound.
func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, storage.ErrNotFound)
	}
	return nil
}
