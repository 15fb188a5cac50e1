package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/ui"
)

func newPauseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "pause <on|off>",
		Short:     "Turn pause mode on or off",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := svc.SetPauseMode(ctx, args[0] == "on")
			if err != nil {
				return err
			}
			if st.PauseMode {
				fmt.Fprintln(cmd.OutOrStdout(), ui.IconPause+" Pause mode on. Take it easy.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Pause mode off.")
			}
			return nil
		},
	}
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data (keeps the shop catalog)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes everything; pass --yes to confirm")
			}
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconWarn+" All data deleted."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
