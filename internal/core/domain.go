package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"budget/internal/calendar"
)

const maxDescriptionLen = 200

type (
	// ExpenseItem is a single expense recorded on a day.
	ExpenseItem struct {
		ID          string
		Description string
		Amount      Money
	}

	// MonthData holds the income and per-day expenses of one calendar month.
	// Days maps a YYYY-MM-DD key to its items in insertion order.
	MonthData struct {
		ID     string // YYYY-MM
		Name   string
		Year   int
		Income Money
		Days   map[string][]ExpenseItem
	}

	// Identity is the display identity of the signed in user.
	Identity struct {
		Name  string
		Email string
	}

	// Credential is what the registry stores per email.
	Credential struct {
		Name     string
		Password string
	}

	// Registry maps an email to its credential.
	Registry map[string]Credential
)

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrDayOutsideMonth    = errors.New("day outside month")
	ErrMissingField       = errors.New("required field missing")

	ErrUnknownMonth       = errors.New("unknown month")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPersistence        = errors.New("persistence failure")
)

// IsValidation reports whether err rejects malformed input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidDay, ErrInvalidYear, ErrInvalidMonth, ErrInvalidAmount, ErrEmptyDescription,
		ErrDescriptionTooLong, ErrDayOutsideMonth, ErrMissingField,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NewExpenseItem validates the input and assigns a fresh random id.
func NewExpenseItem(description string, amount Money) (ExpenseItem, error) {
	item := ExpenseItem{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(description),
		Amount:      amount,
	}
	if err := item.Validate(); err != nil {
		return ExpenseItem{}, err
	}
	return item, nil
}

func (e ExpenseItem) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("expense id: %w", ErrMissingField)
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(e.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return e.Amount.Validate()
}

// NewMonthData returns the zero record for a month.
func NewMonthData(year, monthIndex int) MonthData {
	return MonthData{
		ID:     calendar.MonthID(year, monthIndex),
		Name:   calendar.MonthName(monthIndex),
		Year:   year,
		Income: Money{},
		Days:   map[string][]ExpenseItem{},
	}
}

// MonthIndex returns the zero based month encoded in the id.
func (m MonthData) MonthIndex() (int, error) {
	_, idx, err := calendar.ParseMonthID(m.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	return idx, nil
}

// Validate checks that id, name, year and every day key agree with each
// other and that every item is well formed.
func (m MonthData) Validate() error {
	year, idx, err := calendar.ParseMonthID(m.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	if year != m.Year {
		return fmt.Errorf("%w: id %s does not match year %d", ErrInvalidMonth, m.ID, m.Year)
	}
	if m.Name != calendar.MonthName(idx) {
		return fmt.Errorf("%w: id %s does not match name %q", ErrInvalidMonth, m.ID, m.Name)
	}
	if m.Income.IsNegative() {
		return fmt.Errorf("income: %w", ErrInvalidAmount)
	}
	for day, items := range m.Days {
		if !calendar.DayBelongsToMonth(day, m.ID) {
			return fmt.Errorf("%w: %s not in %s", ErrDayOutsideMonth, day, m.ID)
		}
		seen := make(map[string]struct{}, len(items))
		for _, item := range items {
			if err := item.Validate(); err != nil {
				return fmt.Errorf("day %s: %w", day, err)
			}
			if _, dup := seen[item.ID]; dup {
				return fmt.Errorf("day %s: duplicate expense id %s", day, item.ID)
			}
			seen[item.ID] = struct{}{}
		}
	}
	return nil
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i.Name == "" && i.Email == ""
}

func (i Identity) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("name: %w", ErrMissingField)
	}
	if strings.TrimSpace(i.Email) == "" {
		return fmt.Errorf("email: %w", ErrMissingField)
	}
	return nil
}

// Clone returns an independent copy of the registry.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
