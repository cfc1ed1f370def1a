package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotaplan/rotaplan/pkg/core/services"
)

// ListPeopleCmd creates the listPeople command
func ListPeopleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listPeople",
		Short: "List everyone on the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			people, err := services.ListPeople(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d people:\n\n", len(people))
			for _, p := range people {
				status := "active"
				if !p.Active {
					status = "inactive"
				}
				limit := "default limit"
				if p.MonthlyLimit != nil {
					limit = fmt.Sprintf("limit %d", *p.MonthlyLimit)
				}
				adhoc := ""
				if p.AdhocOptIn {
					adhoc = ", ad-hoc"
				}
				fmt.Printf("- %s (%s) - %s - %s, %s%s\n", p.Name, p.ID, p.Email, status, limit, adhoc)
			}
			fmt.Println()

			return nil
		},
	}
}
