package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rotaplan/rotaplan/pkg/core/services"
)

// SetAvailabilityCmd creates the setAvailability command
func SetAvailabilityCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setAvailability <person_id> <slot> <available>",
		Short: "Declare a recurring or specific-date availability rule",
		Long: `Declare availability for a person and slot (morning or evening).
Use --weekday for a recurring weekly rule (0=Sunday..6=Saturday) or --date
for a specific-date override. Specific dates take precedence over recurring
rules on that date.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			available, err := strconv.ParseBool(args[2])
			if err != nil {
				return fmt.Errorf("available must be true or false: %w", err)
			}

			var weekday *int
			var date *string
			if cmd.Flags().Changed("weekday") {
				w, _ := cmd.Flags().GetInt("weekday")
				weekday = &w
			}
			if cmd.Flags().Changed("date") {
				d, _ := cmd.Flags().GetString("date")
				date = &d
			}

			record, err := services.SetAvailability(app.Ctx, app.Database, app.Logger, args[0], weekday, date, args[1], available)
			if err != nil {
				return err
			}

			if record.Weekday != nil {
				fmt.Printf("\n✓ Recurring availability set: person %s, weekday %d, %s = %t\n\n",
					record.PersonID, *record.Weekday, record.Slot, record.Available)
			} else {
				fmt.Printf("\n✓ Specific-date availability set: person %s, %s, %s = %t\n\n",
					record.PersonID, *record.Date, record.Slot, record.Available)
			}
			return nil
		},
	}

	cmd.Flags().Int("weekday", 0, "Recurring weekday (0=Sunday..6=Saturday)")
	cmd.Flags().String("date", "", "Specific date (YYYY-MM-DD)")

	return cmd
}
