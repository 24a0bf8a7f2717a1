// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tripledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for trip ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// The ledger engine never talks to a Store directly; services load a
// TripSnapshot and hand it to the engine as immutable input.
type Store interface {
	// CreateTrip persists a new trip. A missing ID is generated.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip by ID, or ErrNotFound.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTrips returns all trips, newest first.
	ListTrips(ctx context.Context) ([]models.Trip, error)

	// DeleteTrip removes a trip and everything attached to it.
	DeleteTrip(ctx context.Context, tripID string) error

	// CreatePerson adds a person to a trip's roster.
	CreatePerson(ctx context.Context, person *models.Person) error

	// ListPeople returns a trip's roster in insertion order.
	ListPeople(ctx context.Context, tripID string) ([]models.Person, error)

	// DeletePerson removes a person. Fails while expenses or settlements
	// still reference them.
	DeletePerson(ctx context.Context, personID string) error

	// CreateExpense persists an expense with its participants and splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses returns a trip's expenses, oldest first.
	ListExpenses(ctx context.Context, tripID string) ([]models.Expense, error)

	// DeleteExpense removes an expense and its child rows.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement persists a settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlements returns a trip's settlements, oldest first.
	ListSettlements(ctx context.Context, tripID string) ([]models.Settlement, error)

	// DeleteSettlement removes a settlement.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Snapshot assembles the fully materialized engine input for one trip.
	Snapshot(ctx context.Context, tripID string) (*models.TripSnapshot, error)

	// Close releases any resources held by the store.
	Close() error
}
