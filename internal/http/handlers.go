package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"prestiti/internal/core"
	"prestiti/internal/storage"
)

// handleListLoans returns every live loan with its computed summary.
// GET /loans?as_of=YYYY-MM-DD
func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseAsOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid as_of date, expected YYYY-MM-DD")
		return
	}

	key := fmt.Sprintf("loans:%d:%s", s.currentGeneration(), asOf.Format("2006-01-02"))
	if overviews, ok := s.overviewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, map[string]any{"loans": overviews})
		return
	}

	overviews, err := s.api.ListLoans(r.Context(), asOf)
	if err != nil {
		slog.ErrorContext(r.Context(), "List loans failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list loans")
		return
	}

	s.overviewCache.Set(key, overviews)
	writeJSON(w, http.StatusOK, map[string]any{"loans": overviews})
}

// handleGetSchedule returns one loan's full timeline and summary.
// GET /loans/{id}/schedule?as_of=YYYY-MM-DD
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID := r.PathValue("id")
	asOf, ok := parseAsOf(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid as_of date, expected YYYY-MM-DD")
		return
	}

	view, err := s.api.GetSchedule(r.Context(), loanID, asOf)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "loan not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get schedule failed", "loan_id", loanID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute schedule")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// handleCreateLoan upserts a raw loan record.
// POST /loans
func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var raw core.RawLoanRecord
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if raw.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "id is required")
		return
	}

	if err := s.api.CreateLoan(r.Context(), raw); err != nil {
		slog.ErrorContext(r.Context(), "Create loan failed", "loan_id", raw.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save loan")
		return
	}

	s.bumpGeneration()
	writeJSON(w, http.StatusCreated, map[string]string{"id": raw.ID})
}

// handleDeleteLoan soft-deletes a loan and its payments.
// DELETE /loans/{id}
func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID := r.PathValue("id")

	err := s.api.DeleteLoan(r.Context(), loanID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "loan not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete loan failed", "loan_id", loanID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete loan")
		return
	}

	s.bumpGeneration()
	w.WriteHeader(http.StatusNoContent)
}

// handleAddPayment appends a raw payment row to a loan.
// POST /loans/{id}/payments
func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	loanID := r.PathValue("id")

	var raw core.RawPaymentRecord
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, ok := core.ParseWireDate(raw.Fdt); !ok {
		writeError(w, http.StatusUnprocessableEntity, "fdt is required and must be a date")
		return
	}

	id, err := s.api.AddPayment(r.Context(), loanID, raw)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "loan not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Add payment failed", "loan_id", loanID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save payment")
		return
	}

	s.bumpGeneration()
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "loan_id": loanID})
}

// handleDeletePayment soft-deletes one payment row.
// DELETE /loans/{id}/payments/{paymentID}
func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	loanID := r.PathValue("id")
	paymentID, err := strconv.ParseInt(r.PathValue("paymentID"), 10, 64)
	if err != nil || paymentID < 1 {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	err = s.api.DeletePayment(r.Context(), loanID, paymentID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete payment failed",
			"loan_id", loanID, "payment_id", paymentID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete payment")
		return
	}

	s.bumpGeneration()
	w.WriteHeader(http.StatusNoContent)
}
