package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mapfin/internal/dashboard"
	"mapfin/internal/format"
)

func wealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "wealth",
		Short: "Asset allocation, net worth history and liabilities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request()
			if err != nil {
				return err
			}
			v, err := a.svc.Wealth(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.opts.output == jsonOutputFormat {
				return a.writeJSON(cmd.OutOrStdout(), v)
			}
			renderWealth(cmd.OutOrStdout(), a.settings, v)
			return nil
		},
	}
}

func renderWealth(w io.Writer, s format.Settings, v *dashboard.WealthView) {
	fmt.Fprintf(w, "Net worth %s as of %s, liabilities %s, runway %.1f months\n\n",
		s.Full(v.Snapshot.Total), format.Date(v.Snapshot.Date.Time),
		s.Full(v.Liabilities.Outstanding), v.Runway.RunwayMonths)

	at := createStyledTable("CATEGORY", "VALUE", "SHARE")
	for _, sl := range v.Allocation {
		at.Row(sl.Name, s.Full(sl.Value), fmt.Sprintf("%.1f%%", sl.Percentage))
	}
	printTable(w, "Allocation", at)

	ht := createStyledTable("PERIOD", "ASSETS", "LIABILITIES", "NET WORTH")
	for _, p := range v.History {
		ht.Row(p.Period, s.Compact(p.Assets), s.Compact(p.Liabilities), s.Compact(p.NetWorth))
	}
	printTable(w, v.Range.Label, ht)
}
