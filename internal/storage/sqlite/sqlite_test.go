package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/storage"
)

// setupTestStore creates a store backed by a temp database.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// seedTrip creates a trip with a roster and returns the trip and people.
func seedTrip(t *testing.T, store *SQLiteStore, names ...string) (*models.Trip, []models.Person) {
	t.Helper()
	ctx := context.Background()

	budget := money.FromCents(100000)
	trip := &models.Trip{Name: "Test Trip", Currency: "USD", Budget: &budget}
	if err := store.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	people := make([]models.Person, len(names))
	for i, name := range names {
		p := models.Person{TripID: trip.ID, Name: name}
		if err := store.CreatePerson(ctx, &p); err != nil {
			t.Fatalf("failed to create person %s: %v", name, err)
		}
		people[i] = p
	}
	return trip, people
}

func TestTripRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	budget := money.FromCents(250000)
	trip := &models.Trip{
		Name:      "Goa 2025",
		Currency:  "INR",
		Budget:    &budget,
		StartDate: &start,
		EndDate:   &end,
	}
	if err := store.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	if trip.ID == "" {
		t.Fatal("CreateTrip did not assign an ID")
	}

	got, err := store.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip failed: %v", err)
	}
	if got.Name != trip.Name || got.Currency != trip.Currency {
		t.Errorf("got %+v, want name/currency of %+v", got, trip)
	}
	if got.Budget == nil || got.Budget.Cents != 250000 {
		t.Errorf("budget = %v, want 250000 cents", got.Budget)
	}
	if got.StartDate == nil || !got.StartDate.Equal(start) {
		t.Errorf("start date = %v, want %v", got.StartDate, start)
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("end date = %v, want %v", got.EndDate, end)
	}
}

func TestTripWithoutOptionalFields(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	trip := &models.Trip{Name: "Weekend", Currency: "EUR"}
	if err := store.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	got, err := store.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip failed: %v", err)
	}
	if got.Budget != nil || got.StartDate != nil || got.EndDate != nil {
		t.Errorf("optional fields should stay nil, got %+v", got)
	}
}

func TestGetTripNotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetTrip(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPeopleRosterOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, people := seedTrip(t, store, "Carol", "Alice", "Bob")

	got, err := store.ListPeople(ctx, people[0].TripID)
	if err != nil {
		t.Fatalf("ListPeople failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d people, want 3", len(got))
	}
	// Insertion order, not alphabetical.
	for i, want := range []string{"Carol", "Alice", "Bob"} {
		if got[i].Name != want {
			t.Errorf("people[%d] = %s, want %s", i, got[i].Name, want)
		}
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	trip, people := seedTrip(t, store, "Alice", "Bob", "Carol")

	expense := &models.Expense{
		TripID:        trip.ID,
		PayerID:       people[0].ID,
		Item:          "Dinner",
		Amount:        money.FromCents(10001),
		Participants:  []string{people[2].ID, people[0].ID, people[1].ID},
		Date:          time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC),
		Category:      "food",
		SplitType:     models.SplitEqual,
		Notes:         "beach shack",
		PaymentMethod: "cash",
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	expenses, err := store.ListExpenses(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(expenses))
	}
	got := expenses[0]
	if got.Amount.Cents != 10001 {
		t.Errorf("amount = %d cents, want 10001", got.Amount.Cents)
	}
	if got.Category != "food" || got.SplitType != models.SplitEqual || got.Notes != "beach shack" {
		t.Errorf("got %+v", got)
	}
	// Participant order must survive the round-trip; equal-split
	// remainder apportioning depends on it.
	want := []string{people[2].ID, people[0].ID, people[1].ID}
	for i, id := range want {
		if got.Participants[i] != id {
			t.Errorf("participants[%d] = %s, want %s", i, got.Participants[i], id)
		}
	}
}

func TestExpenseSplitsRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	trip, people := seedTrip(t, store, "Alice", "Bob")

	pct := &models.Expense{
		TripID:       trip.ID,
		PayerID:      people[0].ID,
		Item:         "Taxi",
		Amount:       money.FromCents(5000),
		Participants: []string{people[0].ID, people[1].ID},
		Date:         time.Now().UTC().Truncate(time.Second),
		SplitType:    models.SplitPercentage,
		Weights:      map[string]float64{people[0].ID: 70, people[1].ID: 30},
	}
	if err := store.CreateExpense(ctx, pct); err != nil {
		t.Fatalf("CreateExpense(percentage) failed: %v", err)
	}

	custom := &models.Expense{
		TripID:       trip.ID,
		PayerID:      people[1].ID,
		Item:         "Tickets",
		Amount:       money.FromCents(8000),
		Participants: []string{people[0].ID, people[1].ID},
		Date:         time.Now().UTC().Truncate(time.Second),
		SplitType:    models.SplitCustom,
		Amounts: map[string]money.Money{
			people[0].ID: money.FromCents(3000),
			people[1].ID: money.FromCents(5000),
		},
	}
	if err := store.CreateExpense(ctx, custom); err != nil {
		t.Fatalf("CreateExpense(custom) failed: %v", err)
	}

	expenses, err := store.ListExpenses(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("got %d expenses, want 2", len(expenses))
	}

	for _, exp := range expenses {
		switch exp.SplitType {
		case models.SplitPercentage:
			if exp.Weights[people[0].ID] != 70 || exp.Weights[people[1].ID] != 30 {
				t.Errorf("weights = %v, want 70/30", exp.Weights)
			}
			if exp.Amounts != nil {
				t.Errorf("percentage expense has custom amounts: %v", exp.Amounts)
			}
		case models.SplitCustom:
			if exp.Amounts[people[0].ID].Cents != 3000 || exp.Amounts[people[1].ID].Cents != 5000 {
				t.Errorf("amounts = %v, want 3000/5000", exp.Amounts)
			}
		}
	}
}

func TestSettlementRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	trip, people := seedTrip(t, store, "Alice", "Bob")

	settlement := &models.Settlement{
		TripID:       trip.ID,
		FromPersonID: people[1].ID,
		ToPersonID:   people[0].ID,
		Amount:       money.FromCents(2500),
		Date:         time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC),
		Method:       "upi",
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	settlements, err := store.ListSettlements(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(settlements) != 1 {
		t.Fatalf("got %d settlements, want 1", len(settlements))
	}
	got := settlements[0]
	if got.FromPersonID != people[1].ID || got.ToPersonID != people[0].ID || got.Amount.Cents != 2500 {
		t.Errorf("got %+v", got)
	}
}

func TestSnapshot(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	trip, people := seedTrip(t, store, "Alice", "Bob")

	expense := &models.Expense{
		TripID:       trip.ID,
		PayerID:      people[0].ID,
		Item:         "Lunch",
		Amount:       money.FromCents(4000),
		Participants: []string{people[0].ID, people[1].ID},
		Date:         time.Now().UTC(),
		SplitType:    models.SplitEqual,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	settlement := &models.Settlement{
		TripID:       trip.ID,
		FromPersonID: people[1].ID,
		ToPersonID:   people[0].ID,
		Amount:       money.FromCents(2000),
		Date:         time.Now().UTC(),
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	snap, err := store.Snapshot(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Trip.ID != trip.ID {
		t.Errorf("snapshot trip = %s, want %s", snap.Trip.ID, trip.ID)
	}
	if len(snap.People) != 2 || len(snap.Expenses) != 1 || len(snap.Settlements) != 1 {
		t.Errorf("snapshot sizes = %d/%d/%d, want 2/1/1",
			len(snap.People), len(snap.Expenses), len(snap.Settlements))
	}
}

func TestDeletePersonReferencedByExpenseFails(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	trip, people := seedTrip(t, store, "Alice", "Bob")

	expense := &models.Expense{
		TripID:       trip.ID,
		PayerID:      people[0].ID,
		Item:         "Lunch",
		Amount:       money.FromCents(4000),
		Participants: []string{people[0].ID, people[1].ID},
		Date:         time.Now().UTC(),
		SplitType:    models.SplitEqual,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if err := store.DeletePerson(ctx, people[0].ID); err == nil {
		t.Error("expected deleting a referenced person to fail")
	}
}

func TestDeleteTripCascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	trip, people := seedTrip(t, store, "Alice", "Bob")

	expense := &models.Expense{
		TripID:       trip.ID,
		PayerID:      people[0].ID,
		Item:         "Lunch",
		Amount:       money.FromCents(4000),
		Participants: []string{people[0].ID},
		Date:         time.Now().UTC(),
		SplitType:    models.SplitEqual,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if err := store.DeleteTrip(ctx, trip.ID); err != nil {
		t.Fatalf("DeleteTrip failed: %v", err)
	}
	if _, err := store.GetTrip(ctx, trip.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetTrip after delete = %v, want ErrNotFound", err)
	}
	people2, err := store.ListPeople(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListPeople failed: %v", err)
	}
	if len(people2) != 0 {
		t.Errorf("people survived trip deletion: %v", people2)
	}
}

func TestDeleteExpense(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	trip, people := seedTrip(t, store, "Alice")

	expense := &models.Expense{
		TripID:       trip.ID,
		PayerID:      people[0].ID,
		Item:         "Snacks",
		Amount:       money.FromCents(500),
		Participants: []string{people[0].ID},
		Date:         time.Now().UTC(),
		SplitType:    models.SplitEqual,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if err := store.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}
