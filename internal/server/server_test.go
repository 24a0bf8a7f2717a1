package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmynk/tripledger/internal/service"
	"github.com/mmynk/tripledger/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := New(service.NewTripService(store, nil), service.NewLedgerService(store))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, wantStatus int, out any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d", method, url, wantStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
}

func TestTripLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var trip tripResponse
	doJSON(t, http.MethodPost, ts.URL+"/api/trips", map[string]any{
		"name":     "Goa 2025",
		"currency": "INR",
		"budget":   "1500.00",
	}, http.StatusCreated, &trip)
	if trip.ID == "" || trip.Budget != "1500.00" {
		t.Fatalf("unexpected trip response: %+v", trip)
	}

	var people []personResponse
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		var p personResponse
		doJSON(t, http.MethodPost, ts.URL+"/api/trips/"+trip.ID+"/people",
			map[string]any{"name": name}, http.StatusCreated, &p)
		people = append(people, p)
	}

	var expense expenseResponse
	doJSON(t, http.MethodPost, ts.URL+"/api/trips/"+trip.ID+"/expenses", map[string]any{
		"payer_id":     people[0].ID,
		"item":         "Hotel",
		"amount":       "300.00",
		"participants": []string{people[0].ID, people[1].ID, people[2].ID},
		"category":     "accommodation",
		"split_type":   "equal",
	}, http.StatusCreated, &expense)
	if expense.Amount != "300.00" {
		t.Errorf("expected amount 300.00, got %s", expense.Amount)
	}

	var balances map[string]string
	doJSON(t, http.MethodGet, ts.URL+"/api/trips/"+trip.ID+"/balances", nil, http.StatusOK, &balances)
	if balances[people[0].ID] != "200.00" {
		t.Errorf("payer balance: expected 200.00, got %s", balances[people[0].ID])
	}
	if balances[people[1].ID] != "-100.00" || balances[people[2].ID] != "-100.00" {
		t.Errorf("participant balances: %+v", balances)
	}

	var plan []planStepResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/trips/"+trip.ID+"/plan", nil, http.StatusOK, &plan)
	if len(plan) != 2 {
		t.Fatalf("expected 2 plan steps, got %+v", plan)
	}
	for _, step := range plan {
		if step.To != people[0].ID || step.Amount != "100.00" {
			t.Errorf("unexpected plan step: %+v", step)
		}
	}

	var settlement settlementResponse
	doJSON(t, http.MethodPost, ts.URL+"/api/trips/"+trip.ID+"/settlements", map[string]any{
		"from_person_id": people[1].ID,
		"to_person_id":   people[0].ID,
		"amount":         "100.00",
		"method":         "upi",
	}, http.StatusCreated, &settlement)

	doJSON(t, http.MethodGet, ts.URL+"/api/trips/"+trip.ID+"/balances", nil, http.StatusOK, &balances)
	if balances[people[1].ID] != "0.00" {
		t.Errorf("expected settled balance 0.00, got %s", balances[people[1].ID])
	}

	var summary summaryResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/trips/"+trip.ID+"/summary", nil, http.StatusOK, &summary)
	if !summary.Budget.HasBudget || summary.Budget.Spent != "300.00" {
		t.Errorf("unexpected budget status: %+v", summary.Budget)
	}
	if len(summary.Plan) != 1 {
		t.Errorf("expected 1 remaining plan step, got %+v", summary.Plan)
	}

	var analytics analyticsResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/trips/"+trip.ID+"/analytics", nil, http.StatusOK, &analytics)
	if len(analytics.Categories) != 1 || analytics.Categories[0].Category != "accommodation" {
		t.Errorf("unexpected categories: %+v", analytics.Categories)
	}
	if len(analytics.NonPayers) != 2 {
		t.Errorf("expected 2 non-payers, got %+v", analytics.NonPayers)
	}

	doJSON(t, http.MethodDelete, ts.URL+"/api/trips/"+trip.ID, nil, http.StatusNoContent, nil)
	doJSON(t, http.MethodGet, ts.URL+"/api/trips/"+trip.ID, nil, http.StatusNotFound, nil)
}

func TestValidationErrorsMapTo400(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing name",
			body: map[string]any{"currency": "USD"},
		},
		{
			name: "bad currency",
			body: map[string]any{"name": "Trip", "currency": "DOLLARS"},
		},
		{
			name: "bad budget",
			body: map[string]any{"name": "Trip", "currency": "USD", "budget": "lots"},
		},
		{
			name: "bad start date",
			body: map[string]any{"name": "Trip", "currency": "USD", "start_date": "tomorrow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp errorResponse
			doJSON(t, http.MethodPost, ts.URL+"/api/trips", tt.body, http.StatusBadRequest, &errResp)
			if errResp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestUnknownTripMapsTo404(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"", "/balances", "/plan", "/summary", "/analytics"} {
		doJSON(t, http.MethodGet, ts.URL+"/api/trips/no-such-trip"+path, nil, http.StatusNotFound, nil)
	}
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t)

	var trip tripResponse
	doJSON(t, http.MethodPost, ts.URL+"/api/trips", map[string]any{
		"name": "Weekend", "currency": "EUR",
	}, http.StatusCreated, &trip)

	var alice, bob personResponse
	doJSON(t, http.MethodPost, ts.URL+"/api/trips/"+trip.ID+"/people",
		map[string]any{"name": "Alice"}, http.StatusCreated, &alice)
	doJSON(t, http.MethodPost, ts.URL+"/api/trips/"+trip.ID+"/people",
		map[string]any{"name": "Bob"}, http.StatusCreated, &bob)

	doJSON(t, http.MethodPost, ts.URL+"/api/trips/"+trip.ID+"/expenses", map[string]any{
		"payer_id":     alice.ID,
		"item":         "Lunch",
		"amount":       "40.00",
		"participants": []string{alice.ID, bob.ID},
		"split_type":   "equal",
	}, http.StatusCreated, nil)

	resp, err := http.Get(ts.URL + "/api/trips/" + trip.ID + "/export/balances")
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	want := "Person,Balance\nAlice,20.00\nBob,-20.00\n"
	if buf.String() != want {
		t.Errorf("unexpected CSV:\n got: %q\nwant: %q", buf.String(), want)
	}

	resp, err = http.Get(ts.URL + "/api/trips/" + trip.ID + "/export/nonsense")
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown report: expected 400, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/trips", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected wildcard origin, got %q", origin)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	// Generate one request so the counters exist.
	doJSON(t, http.MethodGet, ts.URL+"/api/trips", nil, http.StatusOK, &[]tripResponse{})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(buf.String(), "tripledger_http_requests_total") {
		t.Error("expected request counter in metrics output")
	}
}

func TestContentDispositionFilename(t *testing.T) {
	ts := newTestServer(t)

	var trip tripResponse
	doJSON(t, http.MethodPost, ts.URL+"/api/trips", map[string]any{
		"name": "Trip", "currency": "USD",
	}, http.StatusCreated, &trip)

	resp, err := http.Get(ts.URL + "/api/trips/" + trip.ID + "/export/plan")
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()

	want := fmt.Sprintf("attachment; filename=%q", "plan.csv")
	if got := resp.Header.Get("Content-Disposition"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
