package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/ui"
)

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage recurring goals",
	}
	cmd.AddCommand(
		newGoalAddCmd(),
		newGoalListCmd(),
		newGoalDoneCmd(),
		newGoalArchiveCmd(),
		newGoalTodayCmd(),
	)
	return cmd
}

// scheduleFromDays turns a --days value into a schedule; empty means daily.
func scheduleFromDays(days string) (storage.JSONMap, error) {
	if strings.TrimSpace(days) == "" {
		return engine.DailySchedule(), nil
	}
	list, err := engine.ParseWeekdays(days)
	if err != nil {
		return nil, err
	}
	return engine.WeeklySchedule(list...), nil
}

func newGoalAddCmd() *cobra.Command {
	var details string
	var days string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal (daily unless --days is given)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := scheduleFromDays(days)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var d *string
			if cmd.Flags().Changed("details") {
				d = &details
			}
			g, err := svc.CreateGoal(ctx, strings.Join(args, " "), d, schedule)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %q %s %s\n", ui.IconGoal, g.Title, ui.Muted.Render("("+engine.DescribeSchedule(g.Schedule)+")"), ui.Muted.Render(g.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&details, "details", "", "Longer description")
	cmd.Flags().StringVar(&days, "days", "", "Weekdays for a weekly goal, e.g. mon,wed,fri")
	return cmd
}

func newGoalListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			goals, err := svc.ListGoals(ctx, all)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconGoal, "Goals"))
			if len(goals) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no goals yet: sappy goal add <title>)"))
				return nil
			}
			for _, g := range goals {
				line := fmt.Sprintf("- %s %s %s", g.Title, ui.Muted.Render("("+engine.DescribeSchedule(g.Schedule)+")"), ui.Muted.Render(g.ID))
				if g.IsArchived {
					line += " " + ui.Warn.Render("archived")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived goals")
	return cmd
}

func newGoalDoneCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "done <goalId>",
		Short: "Complete a goal for the day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openMutating(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.CompleteGoalByID(ctx, args[0], date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Created {
				fmt.Fprintln(out, ui.Muted.Render("Already done for "+res.Completion.LocalDate+"."))
				return nil
			}
			fmt.Fprintf(out, "%s Done! +%d charge, %s\n", ui.IconDone, res.Reward.ChargeDelta, ui.Petals(res.Reward.PetalsDelta))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Civil date YYYY-MM-DD (default: today)")
	return cmd
}

func newGoalArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <goalId>",
		Short: "Archive a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			g, err := svc.ArchiveGoal(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %q\n", g.Title)
			return nil
		},
	}
	return cmd
}

func newGoalTodayCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Goals due today and whether they are done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			due, err := svc.TodayGoals(ctx, date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(due) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing due)"))
			}
			for _, g := range due {
				fmt.Fprintf(out, "%s %s %s\n", ui.Check(g.Done), g.Goal.Title, ui.Muted.Render(g.Goal.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Civil date YYYY-MM-DD (default: today)")
	return cmd
}
