package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/ui"
)

const Version = "0.1.0"

type globalFlags struct {
	dataDir string
	backend string
	verbose bool
}

var flags globalFlags

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sappy",
		Short:         "Sappy: a pocket seal that grows with your self-care",
		Long:          "Sappy is a local-first companion: check in, finish goals and activities, charge your seal and let it bloom.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = Version
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Data directory (default: $XDG_DATA_HOME/sappy)")
	cmd.PersistentFlags().StringVar(&flags.backend, "backend", "", "Storage backend (sqlite|file)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging to stderr")

	cmd.AddCommand(
		newOnboardCmd(),
		newStatusCmd(),
		newCheckinCmd(),
		newGoalCmd(),
		newActivityCmd(),
		newQuestsCmd(),
		newClaimCmd(),
		newShopCmd(),
		newBuyCmd(),
		newInventoryCmd(),
		newEquipCmd(true),
		newEquipCmd(false),
		newBloomCmd(),
		newHistoryCmd(),
		newInsightsCmd(),
		newFriendsCmd(),
		newPauseCmd(),
		newResetCmd(),
		newBoardCmd(),
		newMCPCmd(),
		newDaemonCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
