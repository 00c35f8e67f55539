package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/cache"
	"wallet/internal/ledger"
	applog "wallet/internal/log"
	"wallet/internal/services"
	"wallet/internal/storage"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Output: &strings.Builder{}})
	}
	gw := storage.NewGateway(storage.NewMemoryStore(nil))
	svc := services.NewWalletService(ledger.New(context.Background(), gw), nil, opts.Logger)
	srv := NewServer(":0", svc, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const lunchJSON = `{"title":"Lunch","amount":"200","category":"Food","date":"2024-01-01"}`

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Equal(t, "nosniff", do(t, srv, http.MethodGet, "/healthz", "").Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, do(t, srv, http.MethodGet, "/healthz", "").Header().Get("X-Request-ID"))
}

func TestReadyReportsFailedCheck(t *testing.T) {
	srv := newTestServer(t, Options{Checks: map[string]ReadinessCheck{
		"storage": func(context.Context) error { return nil },
		"amqp":    func(context.Context) error { return errors.New("dial refused") },
	}})

	rec := do(t, srv, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "not_ready", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "ok", checks["storage"])
	assert.Contains(t, checks["amqp"], "dial refused")
}

func TestWalletDefaultBalance(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodGet, "/api/wallet", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(5000), body["balance"])
	assert.Equal(t, []any{}, body["expenses"])
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodPost, "/api/expenses", lunchJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, float64(4800), created["balance"])
	expense := created["expense"].(map[string]any)
	id := expense["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "2024-01-01", expense["date"])

	rec = do(t, srv, http.MethodPut, "/api/expenses/"+id,
		`{"title":"Lunch","amount":300,"category":"Food","date":"2024-01-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(4700), decode(t, rec)["balance"])

	rec = do(t, srv, http.MethodGet, "/api/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["expenses"], 1)

	rec = do(t, srv, http.MethodDelete, "/api/expenses/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodDelete, "/api/expenses/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "delete is idempotent")

	assert.Equal(t, float64(5000), decode(t, do(t, srv, http.MethodGet, "/api/wallet", ""))["balance"])
}

func TestExpenseFormEncoded(t *testing.T) {
	srv := newTestServer(t, Options{})

	form := url.Values{"title": {"Bus"}, "amount": {"12,50"}, "category": {"travel"}, "date": {"2024-02-03"}}
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	expense := decode(t, rec)["expense"].(map[string]any)
	assert.Equal(t, "Travel", expense["category"])
	assert.Equal(t, 12.5, expense["amount"])
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   string
		field  string
	}{
		{"missing title", http.MethodPost, "/api/expenses", `{"amount":"10","category":"Food","date":"2024-01-01"}`, 422, "missing_field", "title"},
		{"bad amount", http.MethodPost, "/api/expenses", `{"title":"x","amount":"abc","category":"Food","date":"2024-01-01"}`, 422, "invalid_amount", "amount"},
		{"unknown category", http.MethodPost, "/api/expenses", `{"title":"x","amount":"1","category":"Pets","date":"2024-01-01"}`, 422, "invalid_field", "category"},
		{"bad date", http.MethodPost, "/api/expenses", `{"title":"x","amount":"1","category":"Food","date":"01/01/2024"}`, 422, "invalid_field", "date"},
		{"over balance", http.MethodPost, "/api/expenses", `{"title":"x","amount":"5000.01","category":"Food","date":"2024-01-01"}`, 422, "insufficient_balance", ""},
		{"zero income", http.MethodPost, "/api/income", `{"amount":"0"}`, 422, "invalid_amount", "amount"},
		{"edit unknown", http.MethodPut, "/api/expenses/ghost", lunchJSON, 404, "not_found", ""},
		{"malformed json", http.MethodPost, "/api/expenses", `{"title":`, 400, "bad_request", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, Options{})
			rec := do(t, srv, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, tt.kind, body["error"])
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			}
		})
	}
}

func TestAddIncome(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := do(t, srv, http.MethodPost, "/api/income", `{"amount": 250.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5250.5, decode(t, rec)["balance"])
}

func TestSummaryCachedPerVersion(t *testing.T) {
	srv := newTestServer(t, Options{})
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", lunchJSON).Code)

	first := do(t, srv, http.MethodGet, "/api/summary?top=1", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get("X-Cache"))
	assert.Equal(t, float64(200), decode(t, first)["total_spent"])

	second := do(t, srv, http.MethodGet, "/api/summary?top=1", "")
	assert.Equal(t, "hit", second.Header().Get("X-Cache"))

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/income", `{"amount":"1"}`).Code)

	third := do(t, srv, http.MethodGet, "/api/summary?top=1", "")
	assert.Equal(t, "miss", third.Header().Get("X-Cache"))
	assert.Equal(t, float64(4801), decode(t, third)["balance"])
}

func TestShutdownPurgesSummaryCache(t *testing.T) {
	srv := newTestServer(t, Options{})
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/summary", "").Code)
	require.Equal(t, 1, srv.summaries.Stats().Size)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Equal(t, cache.Stats{}, srv.summaries.Stats())
}

func TestViews(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, body := range []string{
		lunchJSON,
		`{"title":"Bus","amount":"100","category":"Travel","date":"2024-01-02"}`,
		`{"title":"Dinner","amount":"50","category":"Food","date":"2024-01-03"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", body).Code)
	}

	rec := do(t, srv, http.MethodGet, "/api/views/by-category", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{
		map[string]any{"category": "Food", "amount": float64(250)},
		map[string]any{"category": "Travel", "amount": float64(100)},
	}, decode(t, rec)["by_category"])

	rec = do(t, srv, http.MethodGet, "/api/views/top?n=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode(t, rec)["top"].([]any)
	require.Len(t, top, 2)
	assert.Equal(t, "Lunch", top[0].(map[string]any)["title"])
	assert.Equal(t, "Bus", top[1].(map[string]any)["title"])

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/api/views/top?n=x", "").Code)
	assert.Equal(t, []any{}, decode(t, do(t, srv, http.MethodGet, "/api/views/top?n=0", ""))["top"])
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Options{})
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodPatch, "/api/wallet", "").Code)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 2})

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "").Code)
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decode(t, rec)["error"])
}
