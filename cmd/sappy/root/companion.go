package root

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/ui"
)

func newOnboardCmd() *cobra.Command {
	var palette string

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Meet your seal (creates the companion once)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := svc.Onboard(ctx, palette)
			if err != nil {
				return err
			}
			if _, err := svc.EnsureDailyQuests(ctx, ""); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSeal, "Hello, "+ui.PaletteName(c.PaletteID)+" seal!"))
			fmt.Fprintln(out, ui.Muted.Render("Check in, finish goals and activities to charge your seal. At 60 charge it can bloom."))
			return nil
		},
	}

	cmd.Flags().StringVarP(&palette, "palette", "p", engine.DefaultPalette, "Palette ("+strings.Join(engine.Palettes, "|")+")")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show charge, petals, today's quests and due goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openMutating(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := svc.Status(ctx, date)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Civil date YYYY-MM-DD (default: today)")
	return cmd
}

func printStatus(out io.Writer, st *engine.Status) {
	c := st.Companion
	fmt.Fprintln(out, ui.Heading(ui.IconSeal, ui.PaletteName(c.PaletteID)+" seal | "+st.Date))
	fmt.Fprintln(out, ui.LabelValue("Charge", ui.ChargeBar(c.Charge, engine.MaxCharge, engine.BloomThreshold, 20)))
	fmt.Fprintln(out, ui.LabelValue("Petals", ui.Petals(c.PetalsBalance)))
	if len(c.EquippedItemIDs) > 0 {
		fmt.Fprintln(out, ui.LabelValue("Wearing", strings.Join(c.EquippedItemIDs, ", ")))
	}
	if st.CanBloom() {
		fmt.Fprintln(out, ui.BadgeBloom+" "+ui.Muted.Render("(sappy bloom start)"))
	}
	if st.Settings.PauseMode {
		fmt.Fprintln(out, ui.Muted.Render(ui.IconPause+" pause mode is on"))
	}
	fmt.Fprintln(out, "")

	fmt.Fprintln(out, ui.H2.Render(ui.IconQuest+" Daily quests"))
	printQuests(out, st.Quests)
	fmt.Fprintln(out, "")

	fmt.Fprintln(out, ui.H2.Render(ui.IconGoal+" Due today"))
	if len(st.Goals) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("(nothing due)"))
	}
	for _, g := range st.Goals {
		fmt.Fprintf(out, "%s %s %s\n", ui.Check(g.Done), g.Goal.Title, ui.Muted.Render(g.Goal.ID))
	}
}
