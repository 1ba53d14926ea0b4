package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mapfin/internal/analytics"
	"mapfin/internal/core"
	"mapfin/internal/dashboard"
	"mapfin/internal/format"
)

type expenseFlags struct {
	categories []string
	methods    []string
	tags       []string
	statuses   []string
	search     string
	min        float64
	max        float64
	top        int
	list       bool
}

func expensesCmd(a *app) *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Spending totals by period and category",
		Long:  `Filters expenses and charts them over the selected preset. Reimbursed expenses are listed but left out of totals.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request()
			if err != nil {
				return err
			}
			req.TopN = f.top
			req.Criteria = f.criteria(cmd)
			v, err := a.svc.Expenses(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.opts.output == jsonOutputFormat {
				return a.writeJSON(cmd.OutOrStdout(), v)
			}
			renderExpenses(cmd.OutOrStdout(), a.settings, v, f.list)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "Only these categories (repeatable)")
	cmd.Flags().StringSliceVar(&f.methods, "payment-method", nil, "Only these payment methods (repeatable)")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Only expenses carrying one of these tag ids")
	cmd.Flags().StringSliceVar(&f.statuses, "reimbursement", nil, "Only these reimbursement statuses")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Match description, remarks or details")
	cmd.Flags().Float64Var(&f.min, "min", 0, "Minimum amount")
	cmd.Flags().Float64Var(&f.max, "max", 0, "Maximum amount")
	cmd.Flags().IntVar(&f.top, "top", dashboard.DefaultTopN, "Categories shown before grouping the rest as Other")
	cmd.Flags().BoolVar(&f.list, "list", false, "Also list the matching expenses")
	return cmd
}

func (f expenseFlags) criteria(cmd *cobra.Command) analytics.ExpenseCriteria {
	c := analytics.ExpenseCriteria{Tags: f.tags, Search: f.search}
	for _, v := range f.categories {
		c.Categories = append(c.Categories, core.ExpenseCategory(v))
	}
	for _, v := range f.methods {
		c.PaymentMethods = append(c.PaymentMethods, core.PaymentMethod(v))
	}
	for _, v := range f.statuses {
		c.ReimbursementStatuses = append(c.ReimbursementStatuses, core.ReimbursementStatus(v))
	}
	if cmd.Flags().Changed("min") {
		c.AmountMin = &f.min
	}
	if cmd.Flags().Changed("max") {
		c.AmountMax = &f.max
	}
	return c
}

func renderExpenses(w io.Writer, s format.Settings, v *dashboard.ExpensesView, list bool) {
	fmt.Fprintf(w, "%s: %d expenses, %s\n\n", v.Range.Label, v.Count, s.Full(v.Total))

	pt := createStyledTable("PERIOD", "TOTAL")
	for _, p := range v.ByPeriod {
		pt.Row(p.Period, s.Full(p.Total))
	}
	printTable(w, "By period", pt)

	ct := createStyledTable("CATEGORY", "TOTAL", "SHARE")
	for _, c := range v.ByCategory {
		ct.Row(c.Name, s.Full(c.Value), fmt.Sprintf("%.1f%%", c.Percentage))
	}
	printTable(w, "By category", ct)

	if !list {
		return
	}
	et := createStyledTable("DATE", "DESCRIPTION", "CATEGORY", "AMOUNT", "PAYMENT", "TAGS")
	for _, e := range v.Expenses {
		tags := make([]string, len(e.Tags))
		for i, tg := range e.Tags {
			tags[i] = tg.Name
		}
		desc := e.Description
		if e.ReimbursementStatus == core.ReimbursementReimbursed {
			desc += " (reimbursed)"
		}
		et.Row(format.Date(e.Date.Time), desc, e.Category.Label(), s.Full(e.Amount),
			e.PaymentMethod.Label(), strings.Join(tags, ", "))
	}
	printTable(w, "Expenses", et)
}
