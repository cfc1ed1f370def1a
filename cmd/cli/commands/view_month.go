package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotaplan/rotaplan/pkg/core/services"
)

// ViewMonthCmd creates the viewMonth command
func ViewMonthCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewMonth <year> <month>",
		Short: "Show the month's events with their active assignments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parsePeriodArgs(args)
			if err != nil {
				return err
			}

			events, err := services.ListEventsWithAssignments(app.Ctx, app.Database, app.Logger, year, month)
			if err != nil {
				return err
			}

			fmt.Printf("\nSchedule for %d-%02d (%d events):\n\n", year, month, len(events))
			for _, e := range events {
				label := e.Event.Category
				if e.Event.Label != "" {
					label = e.Event.Label
				}
				fmt.Printf("%s %s  %s\n", e.Event.Date, e.Event.Time, label)
				if len(e.Assignments) == 0 {
					fmt.Println("    (unassigned)")
				}
				for _, a := range e.Assignments {
					fmt.Printf("    slot %d: %s [%s] (%s)\n", a.SlotIndex, a.PersonID, a.Status, a.ID)
				}
			}
			fmt.Println()

			return nil
		},
	}
}
