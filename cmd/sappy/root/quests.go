package root

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/ui"
)

func newQuestsCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "quests",
		Short: "Show the day's quests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			quests, err := svc.EnsureDailyQuests(ctx, date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconQuest, "Daily quests"))
			printQuests(out, quests)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Civil date YYYY-MM-DD (default: today)")
	return cmd
}

func printQuests(out io.Writer, quests []storage.Quest) {
	if len(quests) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("(none)"))
		return
	}
	for _, q := range quests {
		fmt.Fprintf(out, "- %s %s %s %s\n",
			engine.QuestTitle(q.QuestType),
			ui.ProgressBar(q.Progress, q.Target, 6),
			ui.QuestState(q.Progress, q.Target, q.IsClaimed),
			ui.Muted.Render(q.ID),
		)
	}
}

func newClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim <questId>",
		Short: "Claim a quest's petals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openMutating(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := svc.ClaimQuest(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Claimed %q: %s\n", ui.IconDone, engine.QuestTitle(q.QuestType), ui.Petals(q.RewardPetals))
			return nil
		},
	}
	return cmd
}
