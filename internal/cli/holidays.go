package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"presence-calendar/internal/app"
	"presence-calendar/internal/config"
	"presence-calendar/internal/models"
)

// HolidaysCmd управление производственным календарем
func HolidaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Manage non-working days",
	}

	cmd.AddCommand(holidaysLoadCmd())
	cmd.AddCommand(holidaysListCmd())

	return cmd
}

func holidaysLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Load production calendar JSON for a year",
		Long: `Load a production calendar in xmlcalendar.ru JSON format.
All stored non-working days of that year are replaced.

Examples:
  calendar holidays load calendar/2024.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.Get())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			cal, err := a.Services.Holidays.LoadFromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s loaded\n\n", color.New(color.FgGreen).Sprint("✓"), args[0])
			fmt.Fprint(cmd.OutOrStdout(), cal.Summary())
			return nil
		},
	}
}

func holidaysListCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored non-working days of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.Get())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			byMonth := make(map[time.Month][]models.Day)
			for m := time.January; m <= time.December; m++ {
				days, err := a.Services.Holidays.ForMonth(cmd.Context(), models.Month{Year: year, Month: m})
				if err != nil {
					return err
				}
				byMonth[m] = days
			}

			displayHolidays(cmd.OutOrStdout(), year, byMonth)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year")

	return cmd
}

func displayHolidays(w io.Writer, year int, byMonth map[time.Month][]models.Day) {
	fmt.Fprintf(w, "🗓  %d\n\n", year)

	total := 0
	for m := time.January; m <= time.December; m++ {
		days := byMonth[m]
		total += len(days)

		nums := make([]string, len(days))
		for i, d := range days {
			nums[i] = fmt.Sprintf("%d", d.Day)
		}
		line := strings.Join(nums, " ")
		if line == "" {
			line = color.New(color.FgYellow).Sprint("(not loaded)")
		}
		fmt.Fprintf(w, "%02d: %s\n", int(m), line)
	}

	fmt.Fprintf(w, "\nTotal: %d\n", total)
}
