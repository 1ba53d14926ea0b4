package analytics

import (
	"testing"
	"time"

	"github.com/carlmjohnson/be"

	"mapfin/internal/core"
)

func ids(expenses []core.Expense) []string {
	out := make([]string, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.ID)
	}
	return out
}

func equalIDs(t *testing.T, want []string, got []core.Expense) {
	t.Helper()
	gotIDs := ids(got)
	be.Equal(t, len(want), len(gotIDs))
	for i := range want {
		be.Equal(t, want[i], gotIDs[i])
	}
}

func TestFilterExpenses(t *testing.T) {
	base := sampleExpenses()
	base[0].Description = "Dinner at Toit"
	base[1].PaymentSpecifics = "HDFC Regalia"
	base[1].PaymentMethod = core.PayCreditCard
	base[2].Tags = []core.Tag{{ID: "tag_goa", Name: "Goa Trip"}}

	nov := TimeRange{Start: day(2024, 11, 5), End: time.Date(2024, 12, 2, 23, 59, 59, 999_000_000, time.UTC)}
	lo, hi := 500.0, 3000.0

	tests := []struct {
		name string
		c    ExpenseCriteria
		want []string
	}{
		{"no criteria keeps everything", ExpenseCriteria{}, []string{"e1", "e2", "e3", "e4", "e5", "e6"}},
		{"person", ExpenseCriteria{PersonID: "spouse"}, []string{"e6"}},
		{"range inclusive on both ends", ExpenseCriteria{Range: &nov}, []string{"e1", "e2"}},
		{"categories or", ExpenseCriteria{Categories: []core.ExpenseCategory{core.FoodDining, core.Leisure}}, []string{"e1", "e3", "e5"}},
		{"payment method", ExpenseCriteria{PaymentMethods: []core.PaymentMethod{core.PayCreditCard}}, []string{"e2"}},
		{"payment specifics", ExpenseCriteria{PaymentSpecifics: []string{"HDFC Regalia"}}, []string{"e2"}},
		{"tag id", ExpenseCriteria{Tags: []string{"tag_goa", "tag_other"}}, []string{"e3"}},
		{"status", ExpenseCriteria{ReimbursementStatuses: []core.ReimbursementStatus{core.ReimbursementReimbursed}}, []string{"e5"}},
		{"amount range", ExpenseCriteria{AmountMin: &lo, AmountMax: &hi}, []string{"e3", "e4", "e6"}},
		{"search description", ExpenseCriteria{Search: "toit"}, []string{"e1"}},
		{"search category label", ExpenseCriteria{Search: "UTILITIES"}, []string{"e4"}},
		{"search payment specifics", ExpenseCriteria{Search: "regalia"}, []string{"e2"}},
		{"search tag name", ExpenseCriteria{Search: "goa"}, []string{"e3"}},
		{"criteria are anded", ExpenseCriteria{PersonID: "manan", Categories: []core.ExpenseCategory{core.Groceries}}, []string{"e2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			equalIDs(t, tt.want, FilterExpenses(base, tt.c))
		})
	}
}

func TestForTotalsKeepsListView(t *testing.T) {
	all := sampleExpenses()
	be.Equal(t, len(all), len(FilterExpenses(all, ExpenseCriteria{})))
	totals := ForTotals(all)
	be.Equal(t, len(all)-1, len(totals))
	for _, e := range totals {
		be.False(t, e.Reimbursed())
	}
}

func TestByPerson(t *testing.T) {
	all := sampleExpenses()
	be.Equal(t, len(all), len(ByPerson(all, "")))
	be.Equal(t, 1, len(ByPerson(all, "spouse")))

	liabilities := []core.Liability{{ID: "l1", PersonID: "manan"}, {ID: "l2", PersonID: "spouse"}}
	got := ByPerson(liabilities, "manan")
	be.Equal(t, 1, len(got))
	be.Equal(t, "l1", got[0].ID)
}

func TestFilterNetWorth(t *testing.T) {
	entries := []core.NetWorthEntry{
		{ID: "n1", PersonID: "manan", ReportDate: core.NewDate(2024, 11, 1), Amount: 1},
		{ID: "n2", PersonID: "manan", ReportDate: core.NewDate(2024, 12, 1), Amount: 2},
		{ID: "n3", PersonID: "spouse", ReportDate: core.NewDate(2024, 12, 1), Amount: 3},
	}
	r := TimeRange{Start: day(2024, 12, 1), End: day(2024, 12, 31)}
	got := FilterNetWorth(entries, "manan", &r)
	be.Equal(t, 1, len(got))
	be.Equal(t, "n2", got[0].ID)
	be.Equal(t, 3, len(FilterNetWorth(entries, "", nil)))
}
