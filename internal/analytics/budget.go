package analytics

import (
	"sort"
	"time"

	"mapfin/internal/core"
)

type BudgetSummary struct {
	Total      float64 `json:"total"`
	Budget     float64 `json:"budget"`
	Percentage float64 `json:"percentage"`
	Remaining  float64 `json:"remaining"`
}

// BudgetLine is spending against one category limit.
type BudgetLine struct {
	Category   core.ExpenseCategory `json:"category"`
	Label      string               `json:"label"`
	Spent      float64              `json:"spent"`
	Limit      float64              `json:"limit"`
	Percentage float64              `json:"percentage"`
	Remaining  float64              `json:"remaining"`
	Critical   bool                 `json:"critical"`
	Over       bool                 `json:"over"`
}

// BudgetUsage compares non-reimbursed spending in r with the sum of every
// monthly limit. Remaining goes negative when the budget is exceeded.
func BudgetUsage(expenses []core.Expense, budgets []core.Budget, r TimeRange) BudgetSummary {
	spent := ExpenseTotal(expenses, r, true)
	var limit float64
	for _, b := range budgets {
		limit += b.MonthlyLimit
	}
	return BudgetSummary{
		Total:      spent,
		Budget:     limit,
		Percentage: percentOf(spent, limit),
		Remaining:  limit - spent,
	}
}

// BudgetLines reports each budget's category spending in r, ordered by
// usage percentage, highest first.
func BudgetLines(expenses []core.Expense, budgets []core.Budget, r TimeRange) []BudgetLine {
	spent := map[core.ExpenseCategory]float64{}
	for _, e := range ForTotals(expenses) {
		if e.Date.IsEmpty() || !r.Contains(e.Date.Time) {
			continue
		}
		spent[e.Category] += e.Amount
	}
	out := make([]BudgetLine, 0, len(budgets))
	for _, b := range budgets {
		s := spent[b.Category]
		out = append(out, BudgetLine{
			Category:   b.Category,
			Label:      b.Category.Label(),
			Spent:      s,
			Limit:      b.MonthlyLimit,
			Percentage: percentOf(s, b.MonthlyLimit),
			Remaining:  b.MonthlyLimit - s,
			Critical:   b.Critical(),
			Over:       s > b.MonthlyLimit,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percentage > out[j].Percentage })
	return out
}

// MonthSummary is the spending of one calendar month.
type MonthSummary struct {
	Month          TimeRange          `json:"month"`
	Expenses       []core.Expense     `json:"-"`
	Total          float64            `json:"total"`
	ByCategory     map[string]float64 `json:"by_category"`
	IsCurrentMonth bool               `json:"is_current_month"`
}

// CurrentMonth summarizes ref's month. When that month has no expenses the
// month of the most recent expense is used instead. Expenses lists every
// row of the month; totals leave out reimbursed rows.
func CurrentMonth(expenses []core.Expense, ref time.Time) MonthSummary {
	month := MonthRange(ref)
	if ExpenseCount(expenses, month) == 0 {
		var latest core.Date
		for _, e := range expenses {
			if e.Date.After(latest.Time) {
				latest = e.Date
			}
		}
		if !latest.IsEmpty() {
			month = MonthRange(latest.Time)
		}
	}
	s := MonthSummary{
		Month:          month,
		Expenses:       FilterExpenses(expenses, ExpenseCriteria{Range: &month}),
		ByCategory:     map[string]float64{},
		IsCurrentMonth: month.Start.Equal(MonthRange(ref).Start),
	}
	for _, e := range ForTotals(s.Expenses) {
		s.Total += e.Amount
		s.ByCategory[string(e.Category)] += e.Amount
	}
	return s
}

// ExpenseCount counts dated expenses within r, reimbursed included.
func ExpenseCount(expenses []core.Expense, r TimeRange) int {
	n := 0
	for _, e := range expenses {
		if !e.Date.IsEmpty() && r.Contains(e.Date.Time) {
			n++
		}
	}
	return n
}
