package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotaplan/rotaplan/pkg/core/services"
	"github.com/rotaplan/rotaplan/pkg/db"
)

// ConfirmCmd creates the confirm command
func ConfirmCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm <assignment_id>",
		Short: "Confirm a suggested assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, _ := cmd.Flags().GetString("actor")

			assignment, err := services.Confirm(app.Ctx, app.Database, app.Logger, args[0], actor)
			if err != nil {
				return err
			}
			app.Metrics.RecordTransition(assignment.Status)

			fmt.Printf("\n✓ Assignment %s confirmed for person %s\n\n", assignment.ID, assignment.PersonID)
			return nil
		},
	}

	cmd.Flags().String("actor", "cli", "Who is performing the transition")

	return cmd
}

// DeclineCmd creates the decline command
func DeclineCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decline <assignment_id> [reason]",
		Short: "Decline a suggested or confirmed assignment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reason string
			if len(args) > 1 {
				reason = args[1]
			}
			actor, _ := cmd.Flags().GetString("actor")

			assignment, err := services.Decline(app.Ctx, app.Database, app.Logger, args[0], reason, actor)
			if err != nil {
				return err
			}
			app.Metrics.RecordTransition(assignment.Status)

			fmt.Printf("\n✓ Assignment %s declined; the slot is free for the next run\n\n", assignment.ID)
			return nil
		},
	}

	cmd.Flags().String("actor", "cli", "Who is performing the transition")

	return cmd
}

// SwapCmd creates the swap command
func SwapCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap <assignment_id> <new_person_id>",
		Short: "Replace a confirmed assignment's person with another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, _ := cmd.Flags().GetBool("override")
			actor, _ := cmd.Flags().GetString("actor")

			replacement, err := services.Swap(app.Ctx, app.Database, app.Cfg, app.Logger, args[0], args[1], override, actor)
			if err != nil {
				return err
			}
			app.Metrics.RecordTransition(db.StatusSwapped)

			fmt.Printf("\n✓ Swap complete: %s now holds slot %d (assignment %s)\n\n",
				replacement.PersonID, replacement.SlotIndex, replacement.ID)
			return nil
		},
	}

	cmd.Flags().Bool("override", false, "Skip eligibility checks for the replacement")
	cmd.Flags().String("actor", "cli", "Who is performing the transition")

	return cmd
}
