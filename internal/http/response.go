package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"wallet/internal/core"
	applog "wallet/internal/log"
)

// errorBody is the JSON shape of every error reply.
type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

const (
	kindMissingField        = "missing_field"
	kindInvalidAmount       = "invalid_amount"
	kindInvalidField        = "invalid_field"
	kindInsufficientBalance = "insufficient_balance"
	kindNotFound            = "not_found"
	kindBadRequest          = "bad_request"
	kindRateLimited         = "rate_limited"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// classify maps a ledger error to an HTTP status and error kind.
func classify(err error) (int, errorBody) {
	body := errorBody{Message: err.Error()}

	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
		body.Message = ve.Err.Error()
	}

	switch {
	case errors.Is(err, core.ErrMissingField):
		body.Error = kindMissingField
	case errors.Is(err, core.ErrInvalidAmount):
		body.Error = kindInvalidAmount
	case errors.Is(err, core.ErrInvalidField):
		body.Error = kindInvalidField
	case errors.Is(err, core.ErrInsufficientBalance):
		body.Error = kindInsufficientBalance
	case errors.Is(err, core.ErrNotFound):
		body.Error = kindNotFound
		return http.StatusNotFound, body
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal error"}
	}
	return http.StatusUnprocessableEntity, body
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body := classify(err)
	logger := applog.FromContext(r.Context())
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldOperation, op, applog.FieldError, err)
	} else {
		logger.InfoContext(r.Context(), "Request rejected",
			applog.FieldOperation, op,
			"kind", body.Error,
			"field", body.Field)
	}
	writeJSON(w, status, body)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: kindBadRequest, Message: msg})
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded")
	writeJSON(w, http.StatusTooManyRequests, errorBody{
		Error:   kindRateLimited,
		Message: "Rate limit exceeded. Please try again later.",
	})
}
