package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotaplan/rotaplan/pkg/core/services"
)

// AddPersonCmd creates the addPerson command
func AddPersonCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addPerson <name> [email]",
		Short: "Add a person to the roster",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email string
			if len(args) > 1 {
				email = args[1]
			}
			adhocOptIn, _ := cmd.Flags().GetBool("adhoc-opt-in")
			limit, _ := cmd.Flags().GetInt("limit")

			var monthlyLimit *int
			if limit > 0 {
				monthlyLimit = &limit
			}

			person, err := services.AddPerson(app.Ctx, app.Database, app.Logger, args[0], email, adhocOptIn, monthlyLimit)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Person added: %s (%s)\n\n", person.Name, person.ID)
			return nil
		},
	}

	cmd.Flags().Bool("adhoc-opt-in", false, "Opt in to ad-hoc event assignments")
	cmd.Flags().Int("limit", 0, "Personal monthly limit (0 uses the configured default)")

	return cmd
}
