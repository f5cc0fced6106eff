package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"budget/internal/calendar"
	"budget/internal/core"
	"budget/internal/monthstore"
)

// Persisted record shapes. Amounts are written as plain JSON numbers in
// major units, e.g. 45.5, and read back from numbers or quoted strings.
type (
	monthRecord struct {
		ID     string                     `json:"id"`
		Name   string                     `json:"name"`
		Year   int                        `json:"year"`
		Income amount                     `json:"income"`
		Days   map[string][]expenseRecord `json:"days"`
	}

	expenseRecord struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Amount      amount `json:"amount"`
	}

	identityRecord struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	credentialRecord struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
)

type amount struct {
	decimal.Decimal
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func fromMoney(m core.Money) amount { return amount{m.Decimal()} }

func (a amount) money() core.Money { return core.FromDecimal(a.Decimal) }

func encodeYear(year int, s monthstore.Snapshot) ([]byte, error) {
	months := s.Year(year).Months()
	if len(months) != 12 {
		return nil, fmt.Errorf("year %d has %d months, want 12", year, len(months))
	}
	out := make(map[string]monthRecord, len(months))
	for _, m := range months {
		rec := monthRecord{
			ID:     m.ID,
			Name:   m.Name,
			Year:   m.Year,
			Income: fromMoney(m.Income),
			Days:   make(map[string][]expenseRecord, len(m.Days)),
		}
		for day, items := range m.Days {
			recs := make([]expenseRecord, len(items))
			for i, it := range items {
				recs[i] = expenseRecord{ID: it.ID, Description: it.Description, Amount: fromMoney(it.Amount)}
			}
			rec.Days[day] = recs
		}
		out[m.ID] = rec
	}
	return json.Marshal(out)
}

func decodeYear(year int, data []byte) (monthstore.Snapshot, error) {
	var in map[string]monthRecord
	if err := strictUnmarshal(data, &in); err != nil {
		return monthstore.Snapshot{}, err
	}
	if len(in) != 12 {
		return monthstore.Snapshot{}, fmt.Errorf("year %d has %d months, want 12", year, len(in))
	}

	months := make([]core.MonthData, 0, len(in))
	for key, rec := range in {
		if key != rec.ID {
			return monthstore.Snapshot{}, fmt.Errorf("month key %q holds record %q", key, rec.ID)
		}
		if rec.Year != year {
			return monthstore.Snapshot{}, fmt.Errorf("month %s belongs to %d, not %d", rec.ID, rec.Year, year)
		}
		m := core.MonthData{
			ID:     rec.ID,
			Name:   monthName(rec),
			Year:   rec.Year,
			Income: rec.Income.money(),
			Days:   make(map[string][]core.ExpenseItem, len(rec.Days)),
		}
		for day, recs := range rec.Days {
			if len(recs) == 0 {
				continue
			}
			items := make([]core.ExpenseItem, len(recs))
			for i, r := range recs {
				items[i] = core.ExpenseItem{ID: r.ID, Description: r.Description, Amount: r.Amount.money()}
			}
			m.Days[day] = items
		}
		months = append(months, m)
	}
	return monthstore.FromMonths(months...)
}

// monthName derives the display name from the id; stored names may have
// been written in another locale.
func monthName(rec monthRecord) string {
	if _, idx, err := calendar.ParseMonthID(rec.ID); err == nil {
		return calendar.MonthName(idx)
	}
	return rec.Name
}

func encodeIdentity(id core.Identity) ([]byte, error) {
	return json.Marshal(identityRecord{Name: id.Name, Email: id.Email})
}

func decodeIdentity(data []byte) (core.Identity, error) {
	var rec identityRecord
	if err := strictUnmarshal(data, &rec); err != nil {
		return core.Identity{}, err
	}
	id := core.Identity{Name: rec.Name, Email: rec.Email}
	if err := id.Validate(); err != nil {
		return core.Identity{}, err
	}
	return id, nil
}

func encodeRegistry(r core.Registry) ([]byte, error) {
	out := make(map[string]credentialRecord, len(r))
	for email, c := range r {
		out[email] = credentialRecord{Name: c.Name, Password: c.Password}
	}
	return json.Marshal(out)
}

func decodeRegistry(data []byte) (core.Registry, error) {
	var in map[string]credentialRecord
	if err := strictUnmarshal(data, &in); err != nil {
		return nil, err
	}
	r := make(core.Registry, len(in))
	for email, c := range in {
		if email == "" || c.Name == "" {
			return nil, fmt.Errorf("registry entry %q: %w", email, core.ErrMissingField)
		}
		r[email] = core.Credential{Name: c.Name, Password: c.Password}
	}
	return r, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
