package root

import (
	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/tui"
)

func newBoardCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, cleanup, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			watch := e.cfg.Path()
			if noWatch {
				watch = ""
			}
			return tui.RunBoard(ctx, e.svc, cmd.OutOrStdout(), watch)
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload when the data file changes")
	return cmd
}
