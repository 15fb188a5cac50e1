package root

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/ui"
)

func newBloomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bloom",
		Short: "Spend a full charge on a story bloom",
	}
	cmd.AddCommand(newBloomStartCmd(), newBloomCompleteCmd(), newBloomAlbumCmd())
	return cmd
}

func printStoryCard(out io.Writer, start *engine.BloomStart) {
	fmt.Fprintln(out, ui.Panel.Render(
		ui.PanelTitle.Render(ui.IconBloom+" "+start.Card.Title)+"\n"+
			start.Card.Body+"\n\n"+
			ui.Key.Render("a) ")+start.Card.ChoiceAText+"\n"+
			ui.Key.Render("b) ")+start.Card.ChoiceBText,
	))
	fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("run %s  instance %s", start.Run.ID, start.Instance.ID)))
}

func newBloomStartCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a bloom (needs 60 charge)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openMutating(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			start, err := svc.StartBloom(ctx, date)
			if err != nil {
				return err
			}
			printStoryCard(cmd.OutOrStdout(), start)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Choose with: sappy bloom complete <a|b>"))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Civil date YYYY-MM-DD (default: today)")
	return cmd
}

func newBloomCompleteCmd() *cobra.Command {
	var reflection string

	cmd := &cobra.Command{
		Use:   "complete [<runId> <instanceId>] <a|b>",
		Short: "Answer the story card and finish the bloom",
		Long:  "Completes the given bloom run. With only a choice, the most recent unfinished bloom is used.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return errors.New("expected <a|b> or <runId> <instanceId> <a|b>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openMutating(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			in := engine.CompleteBloomInput{Choice: storage.Choice(args[len(args)-1])}
			if len(args) == 3 {
				in.BloomRunID, in.StoryInstanceID = args[0], args[1]
			} else {
				pending, err := svc.PendingBloom(ctx)
				if err != nil {
					return err
				}
				if pending == nil {
					return errors.New("no bloom in progress: run sappy bloom start")
				}
				in.BloomRunID, in.StoryInstanceID = pending.Run.ID, pending.Instance.ID
			}
			if cmd.Flags().Changed("reflection") {
				in.ReflectionText = &reflection
			}

			res, err := svc.CompleteBloom(ctx, in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Your seal bloomed! %s\n", ui.IconBloom, ui.Petals(res.PetalsAwarded))
			if res.StickerItemID != "" {
				fmt.Fprintf(out, "%s A sticker fell out: %s\n", ui.IconSticker, res.StickerItemID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&reflection, "reflection", "r", "", "Optional reflection")
	return cmd
}

func newBloomAlbumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "album",
		Short: "List completed blooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := svc.BloomHistory(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBloom, "Bloom album"))
			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no blooms yet)"))
			}
			for _, e := range entries {
				line := fmt.Sprintf("- %s %s choice %s %s", e.Run.LocalDate, e.CardTitle, e.Run.Choice, ui.Petals(e.Run.PetalsAwarded))
				if e.Run.StickerItemID != "" {
					line += " " + ui.IconSticker + " " + e.Run.StickerItemID
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	return cmd
}
