package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"budget/internal/core"
)

// parsePeriod extracts the period selector from query parameters. Absent
// parameters default to the current month, matching the dashboard's landing
// view; year=all selects the full history.
func parsePeriod(r *http.Request) (core.Period, error) {
	q := r.URL.Query()
	year := q.Get("year")
	month := q.Get("month")
	if year == "" && month == "" {
		now := time.Now()
		return core.YearMonth(now.Year(), int(now.Month())), nil
	}
	return core.ParsePeriod(year, month)
}

// bodyValues parses a request body as either JSON or form-encoded data and
// exposes both through one lookup. Values are trimmed and stripped of
// control characters.
type bodyValues struct {
	form url.Values
	json map[string]any
}

func parseBody(r *http.Request) (*bodyValues, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	v := &bodyValues{}
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		v.json = make(map[string]any)
		if err := json.Unmarshal(raw, &v.json); err != nil {
			return nil, fmt.Errorf("parse json body: %w", err)
		}
		return v, nil
	}

	v.form, err = url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse form body: %w", err)
	}
	return v, nil
}

func (v *bodyValues) Get(key string) string {
	if v.json != nil {
		return sanitizeInput(jsonString(v.json[key]))
	}
	return sanitizeInput(v.form.Get(key))
}

func jsonString(val any) string {
	switch x := val.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// transactionFromBody maps the add/edit payload onto a core.Transaction.
// Field-level parse failures surface as the core validation sentinels so the
// error mapping stays uniform.
func transactionFromBody(v *bodyValues) (core.Transaction, error) {
	date, err := core.ParseDate(v.Get("date"))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseMoney(v.Get("amount"))
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(v.Get("kind"))
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:        date,
		Amount:      amount,
		Kind:        kind,
		Category:    v.Get("category"),
		Description: v.Get("description"),
	}, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

// statusForError maps the core error taxonomy onto HTTP statuses. Anything
// unrecognized is a storage-level failure and stays a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrDescriptionTooLong):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
