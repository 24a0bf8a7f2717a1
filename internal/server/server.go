// Package server exposes the ledger over a JSON HTTP API.
//
// All monetary values cross the wire as plain decimal strings ("12.34");
// parsing to cents happens here, at the boundary, and everything past the
// handlers works in minor units.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/tripledger/internal/middleware"
	"github.com/mmynk/tripledger/internal/service"
)

// Server holds the services the HTTP handlers delegate to.
type Server struct {
	trips  *service.TripService
	ledger *service.LedgerService
}

// New creates a Server.
func New(trips *service.TripService, ledger *service.LedgerService) *Server {
	return &Server{trips: trips, ledger: ledger}
}

// Handler builds the full route table wrapped in the middleware chain.
// The returned handler speaks h2c so HTTP/2 works without TLS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/trips", s.handleCreateTrip)
	mux.HandleFunc("GET /api/trips", s.handleListTrips)
	mux.HandleFunc("GET /api/trips/{id}", s.handleGetTrip)
	mux.HandleFunc("DELETE /api/trips/{id}", s.handleDeleteTrip)

	mux.HandleFunc("POST /api/trips/{id}/people", s.handleAddPerson)
	mux.HandleFunc("GET /api/trips/{id}/people", s.handleListPeople)
	mux.HandleFunc("DELETE /api/people/{id}", s.handleDeletePerson)

	mux.HandleFunc("POST /api/trips/{id}/expenses", s.handleRecordExpense)
	mux.HandleFunc("GET /api/trips/{id}/expenses", s.handleListExpenses)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("POST /api/trips/{id}/settlements", s.handleRecordSettlement)
	mux.HandleFunc("GET /api/trips/{id}/settlements", s.handleListSettlements)
	mux.HandleFunc("DELETE /api/settlements/{id}", s.handleDeleteSettlement)

	mux.HandleFunc("GET /api/trips/{id}/balances", s.handleBalances)
	mux.HandleFunc("GET /api/trips/{id}/plan", s.handlePlan)
	mux.HandleFunc("GET /api/trips/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/trips/{id}/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/trips/{id}/export/{report}", s.handleExport)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	handler = middleware.Metrics(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CORS(handler)
	return h2c.NewHandler(handler, &http2.Server{})
}
