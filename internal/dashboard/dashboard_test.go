package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carlmjohnson/be"

	"mapfin/internal/analytics"
	"mapfin/internal/core"
	"mapfin/internal/sheets"
	"mapfin/internal/sheets/memory"
)

var ref = time.Date(2024, 12, 15, 9, 30, 0, 0, time.UTC)

func fixture() map[sheets.Collection][]sheets.Row {
	return map[sheets.Collection][]sheets.Row{
		sheets.Expenses: {
			{"id": "e1", "person_id": "p1", "date": "2024-12-05", "category": "groceries", "inr_amount": "1000"},
			{"id": "e2", "person_id": "p2", "date": "2024-12-10", "category": "food_dining", "inr_amount": "500"},
			{"id": "e3", "person_id": "p1", "date": "2024-11-20", "category": "groceries", "inr_amount": "2000"},
			{"id": "e4", "person_id": "p1", "date": "2024-11-21", "category": "leisure", "inr_amount": "300", "reimbursement_status": "reimbursed"},
			{"id": "e5", "person_id": "p1", "date": "2023-12-01", "category": "groceries", "inr_amount": "800"},
			{"id": "bad", "person_id": "p1", "date": "", "inr_amount": "999"},
		},
		sheets.NetWorthEntries: {
			{"id": "n1", "person_id": "p1", "report_date": "2024-12-01", "category": "liquid_cash", "amount_inr": "100000"},
			{"id": "n2", "person_id": "p1", "report_date": "2024-12-01", "category": "real_estate", "amount_inr": "500000"},
			{"id": "n3", "person_id": "p2", "report_date": "2024-12-01", "category": "mutual_funds", "amount_inr": "50000"},
			{"id": "n4", "person_id": "p1", "report_date": "2024-06-30", "category": "liquid_cash", "amount_inr": "80000"},
		},
		sheets.Liabilities: {
			{"id": "l1", "person_id": "p1", "category": "home_loan", "name": "Flat", "principal": "300000", "outstanding": "200000", "emi": "10000"},
		},
		sheets.Budgets: {
			{"id": "b1", "category": "groceries", "monthly_limit": "5000"},
			{"id": "b2", "category": "food_dining", "monthly_limit": "2000"},
		},
		sheets.Goals: {
			{"id": "g1", "name": "Emergency fund", "type": "savings", "target_amount": "100000", "current_amount": "50000"},
			{"id": "g2", "name": "Laptop", "type": "purchase", "target_amount": "10000", "current_amount": "20000"},
		},
		sheets.Income: {
			{"id": "i1", "person_id": "p1", "date": "2024-12-01", "amount": "90000", "source": "salary"},
		},
	}
}

func newService() *Service {
	return NewService(sheets.NewLoader(memory.New(fixture())))
}

func TestHome(t *testing.T) {
	v, err := newService().Home(context.Background(), Request{Ref: ref})
	be.NilErr(t, err)

	be.Equal(t, 1500.0, v.CurrentMonth.Total)
	be.True(t, v.CurrentMonth.IsCurrentMonth)
	be.Equal(t, 90000.0, v.MonthIncome)
	be.Equal(t, 650000.0, v.NetWorth.Total)
	be.Equal(t, 200000.0, v.Liabilities.Outstanding)
	be.Equal(t, 450000.0, v.NetPosition)
	be.Equal(t, 7000.0, v.Budget.Budget)
	be.Equal(t, 5500.0, v.Budget.Remaining)
	be.Equal(t, 150000.0, v.Runway.LiquidAssets)
	be.Equal(t, 30.0, v.Runway.RunwayMonths)
	be.Equal(t, 125.0, v.GoalProgress)
	be.Equal(t, 3500.0, v.YearToDate.Current)
	be.Equal(t, 800.0, v.YearToDate.Previous)
	be.Equal(t, 2000.0, v.LastMonth.Current)
	be.Equal(t, 2, len(v.BudgetLines))
}

func TestHomeForPerson(t *testing.T) {
	v, err := newService().Home(context.Background(), Request{Ref: ref, PersonID: "p1"})
	be.NilErr(t, err)

	be.Equal(t, 1000.0, v.CurrentMonth.Total)
	be.Equal(t, 600000.0, v.NetWorth.Total)
	be.Equal(t, 20.0, v.Runway.RunwayMonths)
}

func TestExpenses(t *testing.T) {
	svc := newService()
	v, err := svc.Expenses(context.Background(), Request{Ref: ref, Preset: analytics.Preset3M})
	be.NilErr(t, err)

	be.Equal(t, 4, v.Count)
	be.Equal(t, 3500.0, v.Total)
	be.Equal(t, analytics.Monthly, v.Range.Granularity)

	var sum float64
	for _, p := range v.ByPeriod {
		sum += p.Total
	}
	be.Equal(t, 3500.0, sum)
	be.Equal(t, 2, len(v.ByCategory))
	be.Equal(t, string(core.Groceries), v.ByCategory[0].Key)

	filtered, err := svc.Expenses(context.Background(), Request{
		Ref:      ref,
		Preset:   analytics.Preset3M,
		Criteria: analytics.ExpenseCriteria{Categories: []core.ExpenseCategory{core.Groceries}},
	})
	be.NilErr(t, err)
	be.Equal(t, 2, filtered.Count)
	be.Equal(t, 3000.0, filtered.Total)
}

func TestExpensesInvalidPreset(t *testing.T) {
	_, err := newService().Expenses(context.Background(), Request{Ref: ref, Preset: "7W"})
	be.True(t, errors.Is(err, analytics.ErrInvalidPreset))
}

func TestWealth(t *testing.T) {
	v, err := newService().Wealth(context.Background(), Request{Ref: ref, PersonID: "p1", Preset: analytics.Preset1Y})
	be.NilErr(t, err)

	be.Equal(t, 600000.0, v.Snapshot.Total)
	be.Equal(t, 2, len(v.History))
	be.Equal(t, 2, len(v.Allocation))
	be.Equal(t, 1, v.Liabilities.Count)
	be.Equal(t, 100000.0, v.Runway.LiquidAssets)
}

func TestGoals(t *testing.T) {
	v, err := newService().Goals(context.Background(), Request{})
	be.NilErr(t, err)

	be.Equal(t, 2, len(v.Goals))
	be.Equal(t, 2, v.OnTrack)
	be.Equal(t, 125.0, v.Average)
	be.Equal(t, 100.0, v.Goals[1].Progress)
}

type failingReader struct{}

func (failingReader) FetchAll(context.Context, sheets.Collection) ([]sheets.Row, error) {
	return nil, errors.New("sheet unavailable")
}

func TestHomePropagatesLoadErrors(t *testing.T) {
	svc := NewService(sheets.NewLoader(failingReader{}))
	_, err := svc.Home(context.Background(), Request{Ref: ref})
	be.True(t, err != nil)
}
