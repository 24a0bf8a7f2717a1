package server

import (
	"fmt"
	"net/http"

	"github.com/mmynk/tripledger/internal/export"
	"github.com/mmynk/tripledger/internal/service"
)

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.ledger.Balances(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalancesResponse(balances))
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.ledger.Plan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.Summarize(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.ledger.Analyze(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalyticsResponse(analytics))
}

// handleExport streams one of the CSV reports as a file download. The
// {report} segment selects which one: balances, plan, categories or
// frequency.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")
	report := r.PathValue("report")

	switch report {
	case "balances", "plan":
		summary, err := s.ledger.Summarize(r.Context(), tripID)
		if err != nil {
			writeError(w, err)
			return
		}
		setCSVHeaders(w, report)
		if report == "balances" {
			err = export.WriteBalances(w, summary.People, summary.Balances)
		} else {
			err = export.WritePlan(w, summary.People, summary.Plan)
		}
		if err != nil {
			writeError(w, err)
		}
	case "categories", "frequency":
		analytics, err := s.ledger.Analyze(r.Context(), tripID)
		if err != nil {
			writeError(w, err)
			return
		}
		setCSVHeaders(w, report)
		if report == "categories" {
			err = export.WriteCategories(w, analytics.Categories)
		} else {
			err = export.WriteFrequency(w, analytics.People, analytics.Frequency)
		}
		if err != nil {
			writeError(w, err)
		}
	default:
		writeError(w, fmt.Errorf("%w: unknown report %q", service.ErrValidation, report))
	}
}

func setCSVHeaders(w http.ResponseWriter, report string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report+".csv"))
}
