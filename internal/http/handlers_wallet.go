package http

import (
	"context"
	"net/http"
	"time"

	"wallet/internal/core"
	applog "wallet/internal/log"
)

type walletResponse struct {
	Balance  core.Money     `json:"balance"`
	Expenses []core.Expense `json:"expenses"`
	Version  uint64         `json:"version"`
}

type incomeResponse struct {
	Balance core.Money `json:"balance"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady runs every registered check with a shared timeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}

func (s *Server) handleWallet(w http.ResponseWriter, _ *http.Request) {
	snap := s.wallet.Snapshot()
	writeJSON(w, http.StatusOK, walletResponse{
		Balance:  snap.Balance,
		Expenses: snap.Expenses,
		Version:  s.wallet.Version(),
	})
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	bal, err := s.wallet.AddIncome(r.Context(), fields["amount"])
	if err != nil {
		s.writeError(w, r, applog.OpAddIncome, err)
		return
	}
	writeJSON(w, http.StatusOK, incomeResponse{Balance: bal})
}
