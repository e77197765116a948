package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind selects one of the two transaction collections.
	Kind string

	Money struct {
		Cents int64
	}

	// Transaction is an income or expense record. Kind doubles as the "type"
	// discriminator on the wire.
	Transaction struct {
		ID        string    `json:"_id"`
		Owner     string    `json:"user"`
		Kind      Kind      `json:"type"`
		Title     string    `json:"title"`
		Amount    Money     `json:"amount"`
		Category  string    `json:"category"`
		Date      time.Time `json:"date"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	User struct {
		ID           string    `json:"_id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrEmptyTitle         = errors.New("empty title")
	ErrTitleTooLong       = errors.New("title too long (max 200 characters)")
	ErrEmptyOwner         = errors.New("empty owner")
	ErrAmountOverflow     = errors.New("amount overflow")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("not authorized")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

var categories = map[Kind][]string{
	Income:  {"Salary", "Freelance", "Investments", "Business", "Other"},
	Expense: {"Food", "Transport", "Utilities", "Entertainment", "Health", "Education", "Shopping", "Other"},
}

// Kinds lists every transaction kind in a stable order.
func Kinds() []Kind {
	return []Kind{Income, Expense}
}

// ParseKind accepts "income" or "expense" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// Plural is used for collection and sheet naming ("incomes", "expenses").
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Categories returns a copy of the category vocabulary for the kind.
func (k Kind) Categories() []string {
	return append([]string(nil), categories[k]...)
}

// HasCategory reports whether c belongs to the kind's vocabulary (exact match).
func (k Kind) HasCategory(c string) bool {
	for _, v := range categories[k] {
		if v == c {
			return true
		}
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m+o, failing instead of wrapping around.
func (m Money) Add(o Money) (Money, error) {
	s := m.Cents + o.Cents
	if (o.Cents > 0 && s < m.Cents) || (o.Cents < 0 && s > m.Cents) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: s}, nil
}

// Sub returns m-o, failing instead of wrapping around.
func (m Money) Sub(o Money) (Money, error) {
	if o.Cents == -1<<63 {
		return Money{}, ErrAmountOverflow
	}
	return m.Add(Money{Cents: -o.Cents})
}

func (t Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Owner) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return ErrTitleTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Kind.HasCategory(t.Category) {
		return ErrInvalidCategory
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}
