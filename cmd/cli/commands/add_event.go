package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotaplan/rotaplan/pkg/core/services"
)

// AddEventCmd creates the addEvent command
func AddEventCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addEvent <date> <time> [label]",
		Short: "Add a one-off event to the calendar",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var label string
			if len(args) > 2 {
				label = args[2]
			}
			required, _ := cmd.Flags().GetInt("required")

			event, err := services.AddEvent(app.Ctx, app.Database, app.Cfg, app.Logger, args[0], args[1], label, required)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Event created: %s %s (%s, %d required)\n\n", event.Date, event.Time, event.ID, event.RequiredCount)
			return nil
		},
	}

	cmd.Flags().Int("required", 0, "Number of people required (0 uses the configured default)")

	return cmd
}
