package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"wallet/internal/core"
)

const maxBodyBytes = 64 << 10

var errBadBody = errors.New("malformed request body")

// decodeFields reads a flat JSON object or a form-encoded body into a
// string map. JSON numbers are kept as their literal text so amounts are
// not routed through float64.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadBody, err)
		}
		out := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			out[k] = r.PostForm.Get(k)
		}
		return out, nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]string{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		lit := strings.TrimSpace(string(v))
		if lit == "null" {
			continue
		}
		out[k] = lit
	}
	return out, nil
}

func expenseInputFrom(fields map[string]string) core.ExpenseInput {
	return core.ExpenseInput{
		Title:    fields["title"],
		Amount:   fields["amount"],
		Category: fields["category"],
		Date:     fields["date"],
	}
}

// intQuery returns the named query parameter or def when absent. Negative
// values are passed through; the views treat them as "nothing".
func intQuery(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer", name)
	}
	return n, nil
}
