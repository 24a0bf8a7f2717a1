package service

import (
	"context"
	"fmt"

	"github.com/mmynk/tripledger/internal/engine"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/storage"
)

// LedgerService answers derived-state queries: balances, settlement plans
// and aggregate reports. Every query loads a fresh snapshot and recomputes
// from scratch; nothing is cached, so results can never go stale.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// Summary bundles the settled-up view of a trip: who stands where, the
// transfers that would clear all debts, and budget standing.
type Summary struct {
	Trip     models.Trip
	People   []models.Person
	Balances map[string]money.Money
	Plan     []engine.PlanStep
	Budget   engine.BudgetStatus
}

// Analytics bundles the reporting view of a trip.
type Analytics struct {
	Trip       models.Trip
	People     []models.Person
	Categories []engine.CategoryTotal
	Payers     []engine.PersonTotal
	Frequency  map[string]int
	NonPayers  []models.Person
}

// Balances computes the net balance per person for a trip.
func (s *LedgerService) Balances(ctx context.Context, tripID string) (map[string]money.Money, error) {
	snap, err := s.store.Snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	balances, err := engine.ComputeBalances(snap.People, snap.Expenses, snap.Settlements)
	if err != nil {
		return nil, fmt.Errorf("compute balances for trip %s: %w", tripID, err)
	}
	return balances, nil
}

// Plan computes the settlement plan that clears a trip's balances.
func (s *LedgerService) Plan(ctx context.Context, tripID string) ([]engine.PlanStep, error) {
	balances, err := s.Balances(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return engine.PlanSettlement(balances), nil
}

// Summarize computes the full summary view for a trip.
func (s *LedgerService) Summarize(ctx context.Context, tripID string) (*Summary, error) {
	snap, err := s.store.Snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	balances, err := engine.ComputeBalances(snap.People, snap.Expenses, snap.Settlements)
	if err != nil {
		return nil, fmt.Errorf("compute balances for trip %s: %w", tripID, err)
	}
	return &Summary{
		Trip:     snap.Trip,
		People:   snap.People,
		Balances: balances,
		Plan:     engine.PlanSettlement(balances),
		Budget:   engine.BudgetStatusFor(&snap.Trip, snap.Expenses),
	}, nil
}

// Analyze computes the aggregate reports for a trip.
func (s *LedgerService) Analyze(ctx context.Context, tripID string) (*Analytics, error) {
	snap, err := s.store.Snapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &Analytics{
		Trip:       snap.Trip,
		People:     snap.People,
		Categories: engine.CategoryTotals(snap.Expenses),
		Payers:     engine.PersonTotals(snap.People, snap.Expenses),
		Frequency:  engine.PaymentFrequency(snap.People, snap.Expenses),
		NonPayers:  engine.FindNonPayers(snap.People, snap.Expenses),
	}, nil
}
