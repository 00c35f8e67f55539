package http

import (
	"net/http"

	"wallet/internal/core"
	applog "wallet/internal/log"
)

type expenseResponse struct {
	Expense core.Expense `json:"expense"`
	Balance core.Money   `json:"balance"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"expenses": s.wallet.RecentTransactions()})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	e, bal, err := s.wallet.AddExpense(r.Context(), expenseInputFrom(fields))
	if err != nil {
		s.writeError(w, r, applog.OpAddExpense, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseResponse{Expense: e, Balance: bal})
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	e, bal, err := s.wallet.EditExpense(r.Context(), r.PathValue("id"), expenseInputFrom(fields))
	if err != nil {
		s.writeError(w, r, applog.OpEditExpense, err)
		return
	}
	writeJSON(w, http.StatusOK, expenseResponse{Expense: e, Balance: bal})
}

// handleDeleteExpense answers 204 whether or not the id existed.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.wallet.DeleteExpense(r.Context(), id) {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Delete of unknown expense ignored",
			applog.FieldExpenseID, id)
	}
	w.WriteHeader(http.StatusNoContent)
}
