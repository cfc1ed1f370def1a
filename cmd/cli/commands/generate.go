package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotaplan/rotaplan/pkg/core/services"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Propose assignments for the month's unfilled slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := services.Generate(app.Ctx, app.Database, app.Cfg, app.Logger, year, time.Month(month), !dryRun)
			if err != nil {
				return err
			}
			app.Metrics.RecordGeneration(result.Committed, len(result.Proposals), len(result.Unfilled))

			mode := "committed"
			if dryRun {
				mode = "dry run, nothing saved"
			}
			fmt.Printf("\n✓ Generation for %d-%02d complete (%s)\n\n", result.Year, result.Month, mode)
			fmt.Printf("Events created: %d\n", len(result.EventsCreated))
			fmt.Printf("Proposals:      %d\n", len(result.Proposals))
			fmt.Printf("Unfilled:       %d\n\n", len(result.Unfilled))

			for _, p := range result.Proposals {
				fmt.Printf("  %s %s  slot %d → %s\n", p.Event.Date, p.Event.Time, p.Assignment.SlotIndex, p.Assignment.PersonID)
			}
			if len(result.Proposals) > 0 {
				fmt.Println()
			}

			for _, u := range result.Unfilled {
				fmt.Printf("  ✗ %s %s  slot %d: %s\n", u.Event.Date, u.Event.Time, u.SlotIndex, u.Reason)
			}
			if len(result.Unfilled) > 0 {
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().Int("year", 0, "Target year")
	cmd.Flags().Int("month", 0, "Target month (1-12)")
	cmd.Flags().Bool("dry-run", false, "Compute proposals without saving them")
	cmd.MarkFlagRequired("year")
	cmd.MarkFlagRequired("month")

	return cmd
}
