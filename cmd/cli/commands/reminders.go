package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotaplan/rotaplan/pkg/core/services"
)

// RemindersCmd creates the reminders command. It prints the confirmed
// assignments falling due in the coming days, the feed a delivery mechanism
// would consume.
func RemindersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List confirmed assignments due in the coming days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")

			today := time.Now().UTC()
			start := today.Format("2006-01-02")
			end := today.AddDate(0, 0, days).Format("2006-01-02")

			pairs, err := services.ListConfirmedInRange(app.Ctx, app.Database, app.Logger, start, end)
			if err != nil {
				return err
			}

			fmt.Printf("\n%d confirmed assignments between %s and %s:\n\n", len(pairs), start, end)
			for _, pair := range pairs {
				fmt.Printf("  %s %s  %s <%s>\n", pair.Event.Date, pair.Event.Time, pair.Person.Name, pair.Person.Email)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Int("days", 7, "Size of the lookahead window in days")

	return cmd
}
