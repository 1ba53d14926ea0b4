package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mapfin/internal/dashboard"
	"mapfin/internal/format"
)

func homeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Net worth, this month's spending, budget and runway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request()
			if err != nil {
				return err
			}
			v, err := a.svc.Home(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.opts.output == jsonOutputFormat {
				return a.writeJSON(cmd.OutOrStdout(), v)
			}
			renderHome(cmd.OutOrStdout(), a.settings, v)
			return nil
		},
	}
}

func renderHome(w io.Writer, s format.Settings, v *dashboard.HomeView) {
	month := v.CurrentMonth.Month.Label
	if !v.CurrentMonth.IsCurrentMonth {
		month += " (latest with data)"
	}
	last := v.LastMonth.CurrentRange.Label
	if v.LastMonth.FellBack {
		last += " (fallback)"
	}

	t := createStyledTable("METRIC", "VALUE", "DETAIL")
	t.Row("Net worth", s.Full(v.NetWorth.Total), "as of "+format.Date(v.NetWorth.Date.Time))
	t.Row("Liabilities", s.Full(v.Liabilities.Outstanding), fmt.Sprintf("%d loans, EMI %s", v.Liabilities.Count, s.Compact(v.Liabilities.MonthlyEMI)))
	t.Row("Net position", s.Full(v.NetPosition), "")
	t.Row("Spent this month", s.Full(v.CurrentMonth.Total), month)
	t.Row("Income this month", s.Full(v.MonthIncome), "")
	t.Row("Year to date", s.Full(v.YearToDate.Current),
		format.Percent(v.YearToDate.ChangePercent)+" vs "+v.YearToDate.PreviousRange.Label)
	t.Row("Last complete month", s.Full(v.LastMonth.Current),
		last+", "+s.Change(v.LastMonth.Current, v.LastMonth.Previous, v.LastMonth.PreviousRange.Label))
	t.Row("Budget used", fmt.Sprintf("%.1f%%", v.Budget.Percentage),
		s.Compact(v.Budget.Remaining)+" of "+s.Compact(v.Budget.Budget)+" left")
	t.Row("Goals", fmt.Sprintf("%.1f%%", v.GoalProgress), fmt.Sprintf("%d goals", len(v.Goals)))
	t.Row("Runway", fmt.Sprintf("%.1f months", v.Runway.RunwayMonths),
		s.Compact(v.Runway.LiquidAssets)+" liquid / "+s.Compact(v.Runway.CriticalMonthlyBudget)+" per month")
	printTable(w, "Overview", t)

	if len(v.BudgetLines) == 0 {
		return
	}
	bt := createStyledTable("CATEGORY", "SPENT", "LIMIT", "USED", "REMAINING", "")
	for _, l := range v.BudgetLines {
		flag := ""
		switch {
		case l.Over:
			flag = "over"
		case l.Critical:
			flag = "critical"
		}
		bt.Row(l.Label, s.Full(l.Spent), s.Full(l.Limit), fmt.Sprintf("%.1f%%", l.Percentage), s.Full(l.Remaining), flag)
	}
	printTable(w, "Budget "+v.CurrentMonth.Month.Label, bt)
}
