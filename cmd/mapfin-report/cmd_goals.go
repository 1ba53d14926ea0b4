package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mapfin/internal/dashboard"
	"mapfin/internal/format"
)

func goalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "Progress towards savings goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.svc.Goals(cmd.Context(), dashboard.Request{})
			if err != nil {
				return err
			}
			if a.opts.output == jsonOutputFormat {
				return a.writeJSON(cmd.OutOrStdout(), v)
			}
			renderGoals(cmd.OutOrStdout(), a.settings, v)
			return nil
		},
	}
}

func renderGoals(w io.Writer, s format.Settings, v *dashboard.GoalsView) {
	fmt.Fprintf(w, "%d of %d goals on track, average progress %.1f%%\n\n", v.OnTrack, len(v.Goals), v.Average)

	t := createStyledTable("GOAL", "TYPE", "CURRENT", "TARGET", "PROGRESS", "REMAINING", "DUE")
	for _, g := range v.Goals {
		t.Row(g.Goal.Name, g.Goal.Type.Label(), s.Full(g.Current), s.Full(g.Target),
			fmt.Sprintf("%.1f%%", g.Progress), s.Full(g.Remaining), format.MonthYear(g.Goal.TargetDate.Time))
	}
	printTable(w, "Goals", t)
}
