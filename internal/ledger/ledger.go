// Package ledger computes expense totals and balances from month records.
package ledger

import (
	"budget/internal/calendar"
	"budget/internal/core"
)

// DailyTotal sums the items of one day. A nil or empty slice totals zero.
func DailyTotal(items []core.ExpenseItem) core.Money {
	var total core.Money
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

// MonthlyTotal sums DailyTotal over every day present in days.
func MonthlyTotal(days map[string][]core.ExpenseItem) core.Money {
	var total core.Money
	for _, items := range days {
		total = total.Add(DailyTotal(items))
	}
	return total
}

// Balance is income minus expenses. It can be negative.
func Balance(m core.MonthData) core.Money {
	return m.Income.Sub(MonthlyTotal(m.Days))
}

// DaySummary is one row of a month view.
type DaySummary struct {
	Key   string
	Items []core.ExpenseItem
	Total core.Money
}

// MonthSummary is everything a renderer needs to draw one month.
type MonthSummary struct {
	Month    core.MonthData
	Days     []DaySummary
	Expenses core.Money
	Balance  core.Money
}

// Summarize lays out every calendar day of the month, including days with
// no expenses.
func Summarize(m core.MonthData) (MonthSummary, error) {
	idx, err := m.MonthIndex()
	if err != nil {
		return MonthSummary{}, err
	}
	keys := calendar.DaysInMonth(m.Year, idx)
	days := make([]DaySummary, len(keys))
	for i, key := range keys {
		items := m.Days[key]
		days[i] = DaySummary{Key: key, Items: items, Total: DailyTotal(items)}
	}
	return MonthSummary{
		Month:    m,
		Days:     days,
		Expenses: MonthlyTotal(m.Days),
		Balance:  Balance(m),
	}, nil
}
