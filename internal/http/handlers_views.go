package http

import (
	"fmt"
	"net/http"

	"wallet/internal/core"
)

const defaultTopN = 5

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	top, err := intQuery(r, "top", defaultTopN)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	// Entries are keyed by ledger version, so a mutation makes older ones unreachable.
	version := s.wallet.Version()
	if cached, ok := s.summaries.Get(summaryKey(version, top)); ok {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, v := s.wallet.Summary(top)
	s.summaries.Set(summaryKey(v, top), summary)
	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, summary)
}

func summaryKey(version uint64, top int) string {
	return fmt.Sprintf("v%d:top%d", version, top)
}

func (s *Server) handleByCategory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]core.CategoryAmount{"by_category": s.wallet.ByCategory()})
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n, err := intQuery(r, "n", defaultTopN)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]core.Expense{"top": s.wallet.TopExpenses(n)})
}
