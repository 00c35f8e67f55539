package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Food          Category = "Food"
	Shopping      Category = "Shopping"
	Travel        Category = "Travel"
	Bills         Category = "Bills"
	Entertainment Category = "Entertainment"
)

// DateLayout is the wire and storage layout for expense dates.
const DateLayout = "2006-01-02"

type (
	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is one logged outflow. ID is assigned by the ledger.
	Expense struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Amount   Money    `json:"amount"`
		Category Category `json:"category"`
		Date     Date     `json:"date"`
	}

	// ExpenseInput is the raw, untrusted form payload for add and edit.
	ExpenseInput struct {
		Title    string `json:"title"`
		Amount   string `json:"amount"`
		Category string `json:"category"`
		Date     string `json:"date"`
	}

	// Snapshot is the full wallet state persisted as one unit.
	Snapshot struct {
		Balance  Money     `json:"balance"`
		Expenses []Expense `json:"expenses"`
	}
)

var (
	ErrMissingField        = errors.New("missing field")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidField        = errors.New("invalid field")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("expense not found")
)

// Categories lists the accepted categories in display order.
var Categories = []Category{Food, Shopping, Travel, Bills, Entertainment}

// ValidationError names the input field that failed a check.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ParseCategory matches s case-insensitively and returns the canonical spelling.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fieldError("category", ErrInvalidField)
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fieldError("date", ErrInvalidField)
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Validate checks a decoded input and converts it into expense fields.
// Blank fields are reported before malformed ones.
func (in ExpenseInput) Validate() (Expense, error) {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return Expense{}, fieldError("title", ErrMissingField)
	case strings.TrimSpace(in.Amount) == "":
		return Expense{}, fieldError("amount", ErrMissingField)
	case strings.TrimSpace(in.Category) == "":
		return Expense{}, fieldError("category", ErrMissingField)
	case strings.TrimSpace(in.Date) == "":
		return Expense{}, fieldError("date", ErrMissingField)
	}
	if len(title) > 200 {
		return Expense{}, fieldError("title", ErrInvalidField)
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, fieldError("amount", err)
	}
	cat, err := ParseCategory(in.Category)
	if err != nil {
		return Expense{}, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Expense{}, err
	}

	return Expense{Title: title, Amount: amount, Category: cat, Date: date}, nil
}

// Validate reports whether a stored record is complete.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fieldError("id", ErrMissingField)
	}
	if strings.TrimSpace(e.Title) == "" {
		return fieldError("title", ErrMissingField)
	}
	if e.Amount.Cents <= 0 {
		return fieldError("amount", ErrInvalidAmount)
	}
	if !e.Category.Valid() {
		return fieldError("category", ErrInvalidField)
	}
	if e.Date.IsZero() {
		return fieldError("date", ErrMissingField)
	}
	return nil
}

// Clone returns a snapshot that shares no slice memory with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Balance: s.Balance, Expenses: make([]Expense, len(s.Expenses))}
	copy(out.Expenses, s.Expenses)
	return out
}
