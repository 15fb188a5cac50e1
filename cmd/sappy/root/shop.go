package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/ui"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Browse the petal shop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := svc.Companion(ctx)
			if err != nil {
				return err
			}
			entries, err := svc.ShopListing(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconShop, "Shop")+"  "+ui.Petals(c.PetalsBalance))
			for _, e := range entries {
				var state string
				switch {
				case e.Equipped:
					state = ui.Good.Render("wearing")
				case e.Owned:
					state = ui.Good.Render("owned")
				case e.Affordable:
					state = ui.Petal.Render(fmt.Sprintf("%d petals", e.Item.PricePetals))
				default:
					state = ui.Muted.Render(fmt.Sprintf("%d petals", e.Item.PricePetals))
				}
				fmt.Fprintf(out, "- %s %s %s %s\n", e.Item.Name, ui.Muted.Render("["+e.Item.Category+"]"), state, ui.Muted.Render(e.Item.ID))
			}
			return nil
		},
	}
	return cmd
}

func newBuyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy <itemId>",
		Short: "Buy an item with petals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openMutating(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.PurchaseItem(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.AlreadyOwned {
				fmt.Fprintln(out, ui.Muted.Render("You already own "+args[0]+"."))
				return nil
			}
			fmt.Fprintf(out, "%s Bought %s. %s left\n", ui.IconShop, args[0], ui.Petals(res.Companion.PetalsBalance))
			return nil
		},
	}
	return cmd
}

func newInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "List owned items and stickers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := svc.Inventory(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSticker, "Inventory"))
			if len(items) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(empty)"))
			}
			for _, e := range items {
				line := fmt.Sprintf("- %s %s", e.Item.Name, ui.Muted.Render(e.Item.ID))
				if e.Equipped {
					line += " " + ui.Good.Render("wearing")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	return cmd
}

func newEquipCmd(equip bool) *cobra.Command {
	use, short := "equip <itemId>", "Put on an owned item"
	if !equip {
		use, short = "unequip <itemId>", "Take off an item"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if equip {
				_, err = svc.Equip(ctx, args[0])
			} else {
				_, err = svc.Unequip(ctx, args[0])
			}
			if err != nil {
				return err
			}
			verb := "Wearing"
			if !equip {
				verb = "Took off"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, args[0])
			return nil
		},
	}
	return cmd
}
