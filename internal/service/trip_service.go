// Package service wires storage, the ledger engine and notifications into
// the operations the transport layer exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
	"unicode"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/notify"
	"github.com/mmynk/tripledger/internal/storage"
)

// ErrValidation marks request input the service refuses to persist.
// Transport layers map it to a 400.
var ErrValidation = errors.New("validation failed")

// TripService manages trips, rosters, expenses and settlements. It enforces
// the caller contracts the ledger engine assumes: referential integrity and
// positive amounts are checked here, before anything reaches storage.
type TripService struct {
	store    storage.Store
	notifier notify.Notifier
}

// NewTripService creates a TripService with the given storage backend and
// notifier. The notifier may be nil when notifications are disabled.
func NewTripService(store storage.Store, notifier notify.Notifier) *TripService {
	return &TripService{store: store, notifier: notifier}
}

// TripInput carries the fields for creating a trip.
type TripInput struct {
	Name      string
	Currency  string
	Budget    *money.Money
	StartDate *time.Time
	EndDate   *time.Time
}

// CreateTrip validates and persists a new trip.
func (s *TripService) CreateTrip(ctx context.Context, in TripInput) (*models.Trip, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: trip name is required", ErrValidation)
	}
	if !validCurrency(in.Currency) {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrValidation, in.Currency)
	}
	if in.Budget != nil && in.Budget.IsNegative() {
		return nil, fmt.Errorf("%w: budget cannot be negative", ErrValidation)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrValidation)
	}

	trip := &models.Trip{
		Name:      in.Name,
		Currency:  in.Currency,
		Budget:    in.Budget,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	slog.Info("Trip created", "trip_id", trip.ID, "name", trip.Name, "currency", trip.Currency)
	return trip, nil
}

// GetTrip returns one trip.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	return s.store.GetTrip(ctx, tripID)
}

// ListTrips returns all trips.
func (s *TripService) ListTrips(ctx context.Context) ([]models.Trip, error) {
	return s.store.ListTrips(ctx)
}

// DeleteTrip removes a trip with everything attached.
func (s *TripService) DeleteTrip(ctx context.Context, tripID string) error {
	return s.store.DeleteTrip(ctx, tripID)
}

// AddPerson adds a person to a trip's roster.
func (s *TripService) AddPerson(ctx context.Context, tripID, name, email, color string) (*models.Person, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: person name is required", ErrValidation)
	}
	if _, err := s.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}

	person := &models.Person{TripID: tripID, Name: name, Email: email, Color: color}
	if err := s.store.CreatePerson(ctx, person); err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	return person, nil
}

// ListPeople returns a trip's roster.
func (s *TripService) ListPeople(ctx context.Context, tripID string) ([]models.Person, error) {
	return s.store.ListPeople(ctx, tripID)
}

// DeletePerson removes a person from the roster. Storage rejects the
// removal while expenses or settlements still reference them.
func (s *TripService) DeletePerson(ctx context.Context, personID string) error {
	return s.store.DeletePerson(ctx, personID)
}

// ExpenseInput carries the fields for recording an expense.
type ExpenseInput struct {
	TripID        string
	PayerID       string
	Item          string
	Amount        money.Money
	Participants  []string
	Date          time.Time
	Category      string
	SplitType     models.SplitType
	Weights       map[string]float64
	Amounts       map[string]money.Money
	Notes         string
	Receipt       string
	PaymentMethod string
}

// RecordExpense validates and persists an expense, then dispatches a
// notification. The percentage/custom sum contracts are deliberately lax:
// weights that don't sum to 100 or amounts that don't sum to the total are
// logged as warnings but accepted, matching the engine's documented
// permissiveness. Tightening that belongs in UI validation, not here.
func (s *TripService) RecordExpense(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	if in.Item == "" {
		return nil, fmt.Errorf("%w: expense item is required", ErrValidation)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if len(in.Participants) == 0 {
		return nil, fmt.Errorf("%w: at least one participant is required", ErrValidation)
	}
	if !in.SplitType.Valid() {
		return nil, fmt.Errorf("%w: unknown split type %q", ErrValidation, in.SplitType)
	}

	trip, err := s.store.GetTrip(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	people, err := s.store.ListPeople(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	roster := make(map[string]models.Person, len(people))
	for _, p := range people {
		roster[p.ID] = p
	}

	if _, ok := roster[in.PayerID]; !ok {
		return nil, fmt.Errorf("%w: payer %q is not a trip member", ErrValidation, in.PayerID)
	}
	seen := make(map[string]bool, len(in.Participants))
	for _, id := range in.Participants {
		if _, ok := roster[id]; !ok {
			return nil, fmt.Errorf("%w: participant %q is not a trip member", ErrValidation, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate participant %q", ErrValidation, id)
		}
		seen[id] = true
	}

	switch in.SplitType {
	case models.SplitPercentage:
		var sum float64
		for id, w := range in.Weights {
			if w < 0 || w > 100 {
				return nil, fmt.Errorf("%w: weight for %q out of [0,100]", ErrValidation, id)
			}
			sum += w
		}
		if math.Abs(sum-100) > 0.01 {
			slog.Warn("Percentage weights do not sum to 100",
				"trip_id", in.TripID, "item", in.Item, "sum", sum)
		}
	case models.SplitCustom:
		var sum money.Money
		for id, amt := range in.Amounts {
			if amt.IsNegative() {
				return nil, fmt.Errorf("%w: custom amount for %q is negative", ErrValidation, id)
			}
			sum = sum.Add(amt)
		}
		if sum.Cmp(in.Amount) != 0 {
			slog.Warn("Custom split amounts do not sum to the expense amount",
				"trip_id", in.TripID, "item", in.Item,
				"amount", in.Amount, "split_sum", sum)
		}
	}

	expense := &models.Expense{
		TripID:        in.TripID,
		PayerID:       in.PayerID,
		Item:          in.Item,
		Amount:        in.Amount,
		Participants:  in.Participants,
		Date:          in.Date,
		Category:      in.Category,
		SplitType:     in.SplitType,
		Weights:       in.Weights,
		Amounts:       in.Amounts,
		Notes:         in.Notes,
		Receipt:       in.Receipt,
		PaymentMethod: in.PaymentMethod,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.dispatch(ctx, expenseEvent(trip, expense, roster))
	return expense, nil
}

// ListExpenses returns a trip's expenses.
func (s *TripService) ListExpenses(ctx context.Context, tripID string) ([]models.Expense, error) {
	return s.store.ListExpenses(ctx, tripID)
}

// DeleteExpense removes an expense.
func (s *TripService) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.store.DeleteExpense(ctx, expenseID)
}

// SettlementInput carries the fields for recording a settlement.
type SettlementInput struct {
	TripID       string
	FromPersonID string
	ToPersonID   string
	Amount       money.Money
	Date         time.Time
	Method       string
	Notes        string
}

// RecordSettlement validates and persists a settlement, then dispatches a
// notification.
func (s *TripService) RecordSettlement(ctx context.Context, in SettlementInput) (*models.Settlement, error) {
	if in.FromPersonID == in.ToPersonID {
		return nil, fmt.Errorf("%w: from and to must differ", ErrValidation)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	trip, err := s.store.GetTrip(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	people, err := s.store.ListPeople(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	roster := make(map[string]models.Person, len(people))
	for _, p := range people {
		roster[p.ID] = p
	}
	if _, ok := roster[in.FromPersonID]; !ok {
		return nil, fmt.Errorf("%w: sender %q is not a trip member", ErrValidation, in.FromPersonID)
	}
	if _, ok := roster[in.ToPersonID]; !ok {
		return nil, fmt.Errorf("%w: receiver %q is not a trip member", ErrValidation, in.ToPersonID)
	}

	settlement := &models.Settlement{
		TripID:       in.TripID,
		FromPersonID: in.FromPersonID,
		ToPersonID:   in.ToPersonID,
		Amount:       in.Amount,
		Date:         in.Date,
		Method:       in.Method,
		Notes:        in.Notes,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, fmt.Errorf("create settlement: %w", err)
	}

	event := notify.NewEvent(notify.EventSettlementRecorded, trip.ID, trip.Name, settlement.Amount, trip.Currency)
	event.ActorName = roster[settlement.FromPersonID].Name
	event.ActorEmail = roster[settlement.FromPersonID].Email
	event.Item = settlement.Method
	event.Participants = []string{roster[settlement.ToPersonID].Name}
	s.dispatch(ctx, event)

	return settlement, nil
}

// ListSettlements returns a trip's settlements.
func (s *TripService) ListSettlements(ctx context.Context, tripID string) ([]models.Settlement, error) {
	return s.store.ListSettlements(ctx, tripID)
}

// DeleteSettlement removes a settlement.
func (s *TripService) DeleteSettlement(ctx context.Context, settlementID string) error {
	return s.store.DeleteSettlement(ctx, settlementID)
}

// dispatch sends a notification. Failures are logged and swallowed; the
// triggering operation already succeeded.
func (s *TripService) dispatch(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		slog.Error("Notification dispatch failed", "type", event.Type, "trip_id", event.TripID, "error", err)
	}
}

func expenseEvent(trip *models.Trip, expense *models.Expense, roster map[string]models.Person) notify.Event {
	event := notify.NewEvent(notify.EventExpenseAdded, trip.ID, trip.Name, expense.Amount, trip.Currency)
	payer := roster[expense.PayerID]
	event.ActorName = payer.Name
	event.ActorEmail = payer.Email
	event.Item = expense.Item
	for _, id := range expense.Participants {
		event.Participants = append(event.Participants, roster[id].Name)
	}
	return event
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
