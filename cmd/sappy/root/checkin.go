package root

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/ui"
)

func newCheckinCmd() *cobra.Command {
	var note string
	var date string

	cmd := &cobra.Command{
		Use:   "checkin <mood>",
		Short: "Log how you feel (mood 1-5)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("mood is required")
			}
			if _, err := strconv.Atoi(args[0]); err != nil {
				return errors.New("mood must be an integer 1-5")
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

			mood, _ := strconv.Atoi(args[0])
			in := storage.CheckinInput{LocalDate: date, Mood: mood}
			if cmd.Flags().Changed("note") {
				in.Note = &note
			}
			c, err := svc.RecordCheckin(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Checked in %s on %s\n", ui.IconDone, ui.MoodFace(c.Mood), c.LocalDate)
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "Optional note")
	cmd.Flags().StringVar(&date, "date", "", "Civil date YYYY-MM-DD (default: today)")
	return cmd
}

func newActivityCmd() *cobra.Command {
	var duration int
	var note string
	var date string

	cmd := &cobra.Command{
		Use:   "activity <breathe|focus|sound|reflect|first_aid>",
		Short: "Record a finished activity",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("activity type is required")
			}
			if !storage.ActivityType(args[0]).IsValid() {
				return fmt.Errorf("unknown activity %q", args[0])
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

			in := storage.ActivitySessionInput{
				LocalDate:    date,
				ActivityType: storage.ActivityType(args[0]),
			}
			if cmd.Flags().Changed("duration") {
				in.DurationSeconds = &duration
			}
			if cmd.Flags().Changed("note") {
				in.Note = &note
			}
			s, err := svc.RecordActivity(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s done on %s\n", ui.IconDone, s.ActivityType, s.LocalDate)
			return nil
		},
	}

	cmd.Flags().IntVarP(&duration, "duration", "d", 0, "Duration in seconds")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Optional note")
	cmd.Flags().StringVar(&date, "date", "", "Civil date YYYY-MM-DD (default: today)")
	return cmd
}
