// Package dashboard assembles the home, expenses, wealth and goals views.
// Collections are pulled through a sheets.Loader on every call and folded
// with the analytics package; nothing derived is kept between calls.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"mapfin/internal/analytics"
	"mapfin/internal/core"
	"mapfin/internal/log"
	"mapfin/internal/sheets"
)

const (
	DefaultPreset = analytics.Preset1Y
	DefaultTopN   = 6
)

// Request scopes a view. Zero values mean every person, DefaultPreset,
// DefaultTopN and the current time.
type Request struct {
	PersonID string
	Preset   analytics.Preset
	Ref      time.Time
	TopN     int
	// Criteria narrows the expenses view. Its PersonID and Range are
	// filled from the request when empty.
	Criteria analytics.ExpenseCriteria
}

type Service struct {
	loader *sheets.Loader
	now    func() time.Time
	logger *log.Logger
}

func NewService(loader *sheets.Loader) *Service {
	return &Service{
		loader: loader,
		now:    time.Now,
		logger: log.WithComponent(log.ComponentDashboard),
	}
}

func (s *Service) ref(req Request) time.Time {
	if !req.Ref.IsZero() {
		return req.Ref
	}
	return s.now()
}

func (s *Service) resolve(req Request) (analytics.TimeRange, error) {
	p := req.Preset
	if p == "" {
		p = DefaultPreset
	}
	p, err := analytics.ParsePreset(string(p))
	if err != nil {
		return analytics.TimeRange{}, err
	}
	return analytics.Resolve(p, s.ref(req))
}

func topN(req Request) int {
	if req.TopN > 0 {
		return req.TopN
	}
	return DefaultTopN
}

// fetch runs the given loads concurrently and fails on the first error.
func fetch(ctx context.Context, loads ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, load := range loads {
		g.Go(func() error { return load(gctx) })
	}
	return g.Wait()
}

func into[T any](dst *[]T, load func(context.Context) ([]T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		v, err := load(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// HomeView is the landing dashboard.
type HomeView struct {
	Ref          time.Time                  `json:"ref"`
	NetWorth     analytics.Snapshot         `json:"net_worth"`
	Liabilities  analytics.LiabilitySummary `json:"liabilities"`
	NetPosition  float64                    `json:"net_position"`
	CurrentMonth analytics.MonthSummary     `json:"current_month"`
	MonthIncome  float64                    `json:"month_income"`
	YearToDate   analytics.PeriodComparison `json:"year_to_date"`
	LastMonth    analytics.MonthComparison  `json:"last_month"`
	Budget       analytics.BudgetSummary    `json:"budget"`
	BudgetLines  []analytics.BudgetLine     `json:"budget_lines"`
	GoalProgress float64                    `json:"goal_progress"`
	Goals        []analytics.GoalStatus     `json:"goals"`
	Runway       analytics.RunwayResult     `json:"runway"`
}

func (s *Service) Home(ctx context.Context, req Request) (*HomeView, error) {
	var (
		expenses    []core.Expense
		netWorth    []core.NetWorthEntry
		liabilities []core.Liability
		budgets     []core.Budget
		goals       []core.Goal
		income      []core.Income
	)
	err := fetch(ctx,
		into(&expenses, s.loader.Expenses),
		into(&netWorth, s.loader.NetWorth),
		into(&liabilities, s.loader.Liabilities),
		into(&budgets, s.loader.Budgets),
		into(&goals, s.loader.Goals),
		into(&income, s.loader.Income),
	)
	if err != nil {
		return nil, fmt.Errorf("load home: %w", err)
	}

	ref := s.ref(req)
	expenses = analytics.ByPerson(expenses, req.PersonID)
	month := analytics.CurrentMonth(expenses, ref)
	v := &HomeView{
		Ref:          ref,
		NetWorth:     analytics.LatestSnapshot(netWorth, req.PersonID),
		Liabilities:  analytics.LiabilityTotals(liabilities, req.PersonID),
		CurrentMonth: month,
		YearToDate:   analytics.CompareYearToDate(expenses, ref),
		LastMonth:    analytics.CompareLastCompleteMonth(expenses, ref),
		Budget:       analytics.BudgetUsage(expenses, budgets, month.Month),
		BudgetLines:  analytics.BudgetLines(expenses, budgets, month.Month),
		GoalProgress: analytics.AverageGoalProgress(goals),
		Goals:        analytics.GoalProgress(goals),
		Runway:       analytics.Runway(netWorth, budgets, req.PersonID),
	}
	v.NetPosition = v.NetWorth.Total - v.Liabilities.Outstanding
	for _, in := range analytics.ByPerson(income, req.PersonID) {
		if !in.Date.IsEmpty() && month.Month.Contains(in.Date.Time) {
			v.MonthIncome += in.Amount
		}
	}

	s.logger.DebugContext(ctx, "Home view built",
		log.FieldPerson, req.PersonID, log.FieldCount, len(expenses))
	return v, nil
}

// ExpensesView is the filtered transaction list with its charts. Totals
// leave reimbursed expenses out; Expenses keeps them.
type ExpensesView struct {
	Range      analytics.TimeRange     `json:"range"`
	Expenses   []core.Expense          `json:"-"`
	Count      int                     `json:"count"`
	Total      float64                 `json:"total"`
	ByPeriod   []analytics.PeriodTotal `json:"by_period"`
	ByCategory []analytics.Slice       `json:"by_category"`
}

func (s *Service) Expenses(ctx context.Context, req Request) (*ExpensesView, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	expenses, err := s.loader.Expenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}

	c := req.Criteria
	if c.PersonID == "" {
		c.PersonID = req.PersonID
	}
	if c.Range == nil {
		c.Range = &r
	}
	list := analytics.FilterExpenses(expenses, c)
	totals := analytics.ForTotals(list)

	v := &ExpensesView{
		Range:    *c.Range,
		Expenses: list,
		Count:    len(list),
		Total:    analytics.Sum(totals),
		ByPeriod: analytics.ByPeriod(list, *c.Range, r.Granularity, analytics.PeriodOptions{
			ExcludeReimbursed: true,
			WithBreakdown:     true,
		}),
		ByCategory: analytics.TopN(
			analytics.ByCategory(list, core.ExpenseLabels(), core.ChartPalette, true),
			topN(req), core.OtherColor),
	}
	s.logger.DebugContext(ctx, "Expenses view built",
		log.FieldPerson, req.PersonID, log.FieldPreset, string(req.Preset), log.FieldCount, v.Count)
	return v, nil
}

// WealthView is the net worth page.
type WealthView struct {
	Range       analytics.TimeRange        `json:"range"`
	Snapshot    analytics.Snapshot         `json:"snapshot"`
	Allocation  []analytics.Slice          `json:"allocation"`
	History     []analytics.NetWorthPoint  `json:"history"`
	Liabilities analytics.LiabilitySummary `json:"liabilities"`
	Runway      analytics.RunwayResult     `json:"runway"`
}

func (s *Service) Wealth(ctx context.Context, req Request) (*WealthView, error) {
	r, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	var (
		netWorth    []core.NetWorthEntry
		liabilities []core.Liability
		budgets     []core.Budget
	)
	err = fetch(ctx,
		into(&netWorth, s.loader.NetWorth),
		into(&liabilities, s.loader.Liabilities),
		into(&budgets, s.loader.Budgets),
	)
	if err != nil {
		return nil, fmt.Errorf("load wealth: %w", err)
	}

	return &WealthView{
		Range:       r,
		Snapshot:    analytics.LatestSnapshot(netWorth, req.PersonID),
		Allocation:  analytics.NetWorthByCategory(netWorth, req.PersonID, core.AssetLabels(), core.ChartPalette),
		History:     analytics.NetWorthWithLiabilities(netWorth, liabilities, r, req.PersonID),
		Liabilities: analytics.LiabilityTotals(liabilities, req.PersonID),
		Runway:      analytics.Runway(netWorth, budgets, req.PersonID),
	}, nil
}

type GoalsView struct {
	Goals   []analytics.GoalStatus `json:"goals"`
	Average float64                `json:"average"`
	OnTrack int                    `json:"on_track"`
}

func (s *Service) Goals(ctx context.Context, _ Request) (*GoalsView, error) {
	goals, err := s.loader.Goals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	v := &GoalsView{
		Goals:   analytics.GoalProgress(goals),
		Average: analytics.AverageGoalProgress(goals),
	}
	for _, g := range v.Goals {
		if g.OnTrack {
			v.OnTrack++
		}
	}
	return v, nil
}
