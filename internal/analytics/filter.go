package analytics

import (
	"slices"
	"strings"

	"mapfin/internal/core"
)

// ExpenseCriteria holds independent, optional predicates. Zero values impose
// no constraint; present criteria are ANDed and list criteria match any of
// their values.
type ExpenseCriteria struct {
	PersonID              string
	Range                 *TimeRange
	Categories            []core.ExpenseCategory
	PaymentMethods        []core.PaymentMethod
	PaymentSpecifics      []string
	Tags                  []string // tag ids
	ReimbursementStatuses []core.ReimbursementStatus
	AmountMin             *float64
	AmountMax             *float64
	Search                string
}

// FilterExpenses returns the matching expenses in their original order.
// This is the list view: reimbursed expenses are kept unless the criteria
// exclude them explicitly.
func FilterExpenses(expenses []core.Expense, c ExpenseCriteria) []core.Expense {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if c.PersonID != "" && e.PersonID != c.PersonID {
			continue
		}
		if c.Range != nil && (e.Date.IsEmpty() || !e.Date.Within(c.Range.Start, c.Range.End)) {
			continue
		}
		if len(c.Categories) > 0 && !slices.Contains(c.Categories, e.Category) {
			continue
		}
		if len(c.PaymentMethods) > 0 && !slices.Contains(c.PaymentMethods, e.PaymentMethod) {
			continue
		}
		if len(c.PaymentSpecifics) > 0 && !slices.Contains(c.PaymentSpecifics, e.PaymentSpecifics) {
			continue
		}
		if len(c.Tags) > 0 && !slices.ContainsFunc(c.Tags, e.HasTag) {
			continue
		}
		if len(c.ReimbursementStatuses) > 0 && !slices.Contains(c.ReimbursementStatuses, e.ReimbursementStatus) {
			continue
		}
		if c.AmountMin != nil && e.Amount < *c.AmountMin {
			continue
		}
		if c.AmountMax != nil && e.Amount > *c.AmountMax {
			continue
		}
		if search != "" && !matchesSearch(e, search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesSearch(e core.Expense, q string) bool {
	fields := []string{e.Description, e.Category.Label(), e.PaymentSpecifics}
	for _, t := range e.Tags {
		fields = append(fields, t.Name)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// ForTotals drops reimbursed expenses. Every sum and average goes through
// it; transaction lists do not.
func ForTotals(expenses []core.Expense) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !e.Reimbursed() {
			out = append(out, e)
		}
	}
	return out
}

// ByPerson keeps records owned by personID. An empty id is the aggregate
// view and returns a copy of every record.
func ByPerson[T core.Owned](records []T, personID string) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if personID == "" || r.Owner() == personID {
			out = append(out, r)
		}
	}
	return out
}

// FilterNetWorth restricts entries to a person and, when given, a range.
func FilterNetWorth(entries []core.NetWorthEntry, personID string, r *TimeRange) []core.NetWorthEntry {
	out := make([]core.NetWorthEntry, 0, len(entries))
	for _, e := range ByPerson(entries, personID) {
		if r != nil && (e.ReportDate.IsEmpty() || !e.ReportDate.Within(r.Start, r.End)) {
			continue
		}
		out = append(out, e)
	}
	return out
}
