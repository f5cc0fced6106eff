// Package monthstore maps month identifiers to their MonthData records.
//
// A Snapshot is never modified after construction. Every operation returns
// a new Snapshot in which only the changed branch (month, day slice) is
// copied, so a caller can compare snapshots by identity to detect changes
// and older snapshots stay valid.
package monthstore

import (
	"fmt"
	"sort"
	"strings"

	"budget/internal/calendar"
	"budget/internal/core"
)

// Snapshot is an immutable view of the store. The zero value is empty.
type Snapshot struct {
	t *table
}

type table struct {
	months map[string]core.MonthData
}

// Empty returns a snapshot with no months.
func Empty() Snapshot {
	return Snapshot{t: &table{months: map[string]core.MonthData{}}}
}

// FromMonths builds a snapshot from validated records. Ids must be unique.
func FromMonths(months ...core.MonthData) (Snapshot, error) {
	s := Snapshot{t: &table{months: make(map[string]core.MonthData, len(months))}}
	for _, m := range months {
		if err := m.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("month %s: %w", m.ID, err)
		}
		if _, dup := s.t.months[m.ID]; dup {
			return Snapshot{}, fmt.Errorf("duplicate month %s", m.ID)
		}
		if m.Days == nil {
			m.Days = map[string][]core.ExpenseItem{}
		}
		s.t.months[m.ID] = m
	}
	return s, nil
}

// Get returns the record for a month id. The returned value shares storage
// with the snapshot and must be treated as read only.
func (s Snapshot) Get(monthID string) (core.MonthData, bool) {
	m, ok := s.all()[monthID]
	return m, ok
}

// Len returns the number of months held.
func (s Snapshot) Len() int { return len(s.all()) }

// Months returns all records ordered by id.
func (s Snapshot) Months() []core.MonthData {
	out := make([]core.MonthData, 0, s.Len())
	for _, m := range s.all() {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HasYear reports whether any month id starts with the year.
func (s Snapshot) HasYear(year int) bool {
	prefix := calendar.YearPrefix(year)
	for id := range s.all() {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// Year returns the months of one year as a new snapshot.
func (s Snapshot) Year(year int) Snapshot {
	prefix := calendar.YearPrefix(year)
	out := Empty()
	for id, m := range s.all() {
		if strings.HasPrefix(id, prefix) {
			out.t.months[id] = m
		}
	}
	return out
}

// Same reports whether both values are the same snapshot, i.e. no operation
// changed anything between them.
func (s Snapshot) Same(o Snapshot) bool {
	return s.t == o.t
}

func (s Snapshot) all() map[string]core.MonthData {
	if s.t == nil {
		return nil
	}
	return s.t.months
}

// InitializeYear adds twelve zeroed months for year unless the snapshot
// already holds any month of that year, in which case s is returned as is.
func InitializeYear(s Snapshot, year int) Snapshot {
	if s.HasYear(year) {
		return s
	}
	next := s.clone()
	for i := 0; i < 12; i++ {
		m := core.NewMonthData(year, i)
		next.t.months[m.ID] = m
	}
	return next
}

// Merge returns s with every month of other added. A month held by both is
// taken from other. Neither input is modified.
func Merge(s, other Snapshot) Snapshot {
	if other.Len() == 0 {
		return s
	}
	next := s.clone()
	for id, m := range other.all() {
		next.t.months[id] = m
	}
	return next
}

// SetIncome replaces the income of a month.
func SetIncome(s Snapshot, monthID string, income core.Money) (Snapshot, error) {
	m, ok := s.all()[monthID]
	if !ok {
		return s, fmt.Errorf("%w: %s", core.ErrUnknownMonth, monthID)
	}
	if income.IsNegative() {
		return s, fmt.Errorf("income: %w", core.ErrInvalidAmount)
	}
	m.Income = income
	next := s.clone()
	next.t.months[monthID] = m
	return next, nil
}

// AddExpense creates an item with a fresh id and appends it to the day.
func AddExpense(s Snapshot, monthID, dayKey, description string, amount core.Money) (Snapshot, core.ExpenseItem, error) {
	item, err := core.NewExpenseItem(description, amount)
	if err != nil {
		return s, core.ExpenseItem{}, err
	}
	next, err := AppendItem(s, monthID, dayKey, item)
	if err != nil {
		return s, core.ExpenseItem{}, err
	}
	return next, item, nil
}

// AppendItem appends an already built item to the end of the day.
func AppendItem(s Snapshot, monthID, dayKey string, item core.ExpenseItem) (Snapshot, error) {
	m, ok := s.all()[monthID]
	if !ok {
		return s, fmt.Errorf("%w: %s", core.ErrUnknownMonth, monthID)
	}
	if !calendar.DayBelongsToMonth(dayKey, monthID) {
		return s, fmt.Errorf("%w: %s not in %s", core.ErrDayOutsideMonth, dayKey, monthID)
	}
	if err := item.Validate(); err != nil {
		return s, err
	}
	existing := m.Days[dayKey]
	for _, it := range existing {
		if it.ID == item.ID {
			return s, fmt.Errorf("duplicate expense id %s on %s", item.ID, dayKey)
		}
	}

	items := make([]core.ExpenseItem, len(existing), len(existing)+1)
	copy(items, existing)
	items = append(items, item)

	m.Days = cloneDays(m.Days)
	m.Days[dayKey] = items
	next := s.clone()
	next.t.months[monthID] = m
	return next, nil
}

// RemoveExpense drops the item with itemID from the day. A missing day or id
// leaves the snapshot unchanged.
func RemoveExpense(s Snapshot, monthID, dayKey, itemID string) (Snapshot, error) {
	m, ok := s.all()[monthID]
	if !ok {
		return s, fmt.Errorf("%w: %s", core.ErrUnknownMonth, monthID)
	}
	existing, ok := m.Days[dayKey]
	if !ok {
		return s, nil
	}
	pos := -1
	for i, it := range existing {
		if it.ID == itemID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return s, nil
	}

	items := make([]core.ExpenseItem, 0, len(existing)-1)
	items = append(items, existing[:pos]...)
	items = append(items, existing[pos+1:]...)

	m.Days = cloneDays(m.Days)
	if len(items) == 0 {
		delete(m.Days, dayKey)
	} else {
		m.Days[dayKey] = items
	}
	next := s.clone()
	next.t.months[monthID] = m
	return next, nil
}

// clone copies the month table; records themselves are shared until replaced.
func (s Snapshot) clone() Snapshot {
	src := s.all()
	out := &table{months: make(map[string]core.MonthData, len(src)+12)}
	for id, m := range src {
		out.months[id] = m
	}
	return Snapshot{t: out}
}

func cloneDays(days map[string][]core.ExpenseItem) map[string][]core.ExpenseItem {
	out := make(map[string][]core.ExpenseItem, len(days)+1)
	for k, v := range days {
		out[k] = v
	}
	return out
}
