package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotaplan/rotaplan/pkg/core/services"
)

// EnsureMonthCmd creates the ensureMonth command
func EnsureMonthCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ensureMonth <year> <month>",
		Short: "Create the month's missing recurring events",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parsePeriodArgs(args)
			if err != nil {
				return err
			}

			created, err := services.EnsureMonth(app.Ctx, app.Database, app.Cfg, app.Logger, year, month)
			if err != nil {
				return err
			}

			if len(created) == 0 {
				fmt.Printf("\nCalendar for %d-%02d is already complete.\n", year, month)
				return nil
			}

			fmt.Printf("\n✓ Created %d events for %d-%02d:\n\n", len(created), year, month)
			for _, e := range created {
				fmt.Printf("  %s %s  %s\n", e.Date, e.Time, e.Category)
			}
			fmt.Println()

			return nil
		},
	}
}

// parsePeriodArgs parses positional <year> <month> arguments
func parsePeriodArgs(args []string) (int, time.Month, error) {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("year must be a number: %w", err)
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("month must be a number: %w", err)
	}
	return year, time.Month(month), nil
}
