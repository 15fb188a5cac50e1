package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/ui"
)

func newFriendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "Friend codes and support notes",
	}
	cmd.AddCommand(
		newFriendsCodeCmd(),
		newFriendsAddCmd(),
		newFriendsListCmd(),
		newFriendsNoteCmd(),
		newFriendsNotesCmd(),
	)
	return cmd
}

func newFriendsCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "code",
		Short: "Show your friend code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			code, err := svc.FriendCode(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Your code", ui.Key.Render(code)))
			return nil
		},
	}
}

func newFriendsAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <code>",
		Short: "Add a friend by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := svc.AddFriend(ctx, args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s\n", ui.IconHeart, f.DisplayName, ui.Muted.Render(f.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

func newFriendsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List friends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			friends, err := svc.ListFriends(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(friends) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no friends yet)"))
			}
			for _, f := range friends {
				fmt.Fprintf(out, "- %s %s %s\n", f.DisplayName, ui.Key.Render(f.FriendCode), ui.Muted.Render(f.ID))
			}
			return nil
		},
	}
}

func newFriendsNoteCmd() *cobra.Command {
	var received bool

	cmd := &cobra.Command{
		Use:   "note <friendId> <message>",
		Short: "Send (or record a received) support note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			msg := strings.Join(args[1:], " ")
			var n *storage.SupportNote
			if received {
				n, err = svc.ReceiveSupportNote(ctx, args[0], msg)
			} else {
				n, err = svc.SendSupportNote(ctx, args[0], msg)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Note %s\n", ui.IconHeart, n.Direction)
			return nil
		},
	}

	cmd.Flags().BoolVar(&received, "received", false, "Record a note you received")
	return cmd
}

func newFriendsNotesCmd() *cobra.Command {
	var friendID string
	var limit int

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List support notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			notes, err := svc.SupportNotes(ctx, friendID, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(notes) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no notes)"))
			}
			for _, n := range notes {
				fmt.Fprintf(out, "- %s %s %s\n", ui.Muted.Render(n.CreatedAt.Local().Format("2006-01-02")), ui.Key.Render(string(n.Direction)), n.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&friendID, "friend", "", "Only notes for this friend")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of notes (0 for all)")
	return cmd
}
