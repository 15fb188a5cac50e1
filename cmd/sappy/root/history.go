package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the reward ledger, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := svc.History(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "History"))
			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing yet)"))
			}
			for _, e := range entries {
				fmt.Fprintf(out, "- %s %-16s %+4d charge %+4d petals\n",
					ui.Muted.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
					e.EventType, e.ChargeDelta, e.PetalsDelta)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries (0 for all)")
	return cmd
}

func newInsightsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Mood trend and totals for recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sum, err := svc.Summary(ctx, days, "")
			if err != nil {
				return err
			}
			series, err := svc.MoodSeries(ctx, days, "")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconInfo, fmt.Sprintf("Insights %s .. %s", sum.FromDate, sum.ToDate)))
			fmt.Fprintln(out, ui.LabelValue("Check-ins", sum.Checkins))
			if sum.Checkins > 0 {
				fmt.Fprintln(out, ui.LabelValue("Average mood", fmt.Sprintf("%.1f", sum.AverageMood)))
			}
			fmt.Fprintln(out, ui.LabelValue("Goals completed", sum.GoalsCompleted))
			fmt.Fprintln(out, ui.LabelValue("Activities", sum.Activities))
			fmt.Fprintln(out, ui.LabelValue("Petals earned", sum.PetalsEarned))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Mood"))
			for _, p := range series {
				face := ui.Muted.Render("·")
				if p.Mood != nil {
					face = ui.MoodFace(*p.Mood)
				}
				fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(p.Date), face)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Window size in days")
	return cmd
}
