package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"presence-calendar/internal/app"
	"presence-calendar/internal/config"
	"presence-calendar/internal/export"
	"presence-calendar/internal/models"
	"presence-calendar/internal/service"
)

var statusColors = map[models.TaskType]*color.Color{
	models.TaskTypeCommon:   color.New(color.FgGreen),
	models.TaskTypeCustom:   color.New(color.FgCyan),
	models.TaskTypeLeft:     color.New(color.FgYellow),
	models.TaskTypeVacation: color.New(color.FgBlue),
	models.TaskTypeSick:     color.New(color.FgRed),
}

// MonthCmd печатает календарь присутствия за месяц
func MonthCmd() *cobra.Command {
	var (
		date string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show presence calendar for a month",
		Long: `Resolve the presence calendar for the month containing --date
and print it as a matrix: one row per employee, one column per day.

Examples:
  calendar month
  calendar month --date 2024-03-15
  calendar month --date 2024-03-01 --xlsx march.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := models.DayOf(time.Now())
			if date != "" {
				parsed, err := models.ParseDay(date)
				if err != nil {
					return err
				}
				day = parsed
			}

			a, err := app.New(config.Get())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			view, err := a.Services.Presence.MonthByDate(cmd.Context(), day)
			if err != nil {
				return err
			}

			if out != "" {
				return writeXLSX(out, view)
			}

			displayMonth(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "any day of the month, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&out, "xlsx", "", "write the calendar to an Excel file instead of printing")

	return cmd
}

func writeXLSX(path string, view *service.MonthView) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.NewMonthExporter().WriteTo(f, view.MonthPresence, view.Holidays); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("%s %s\n", color.New(color.FgGreen).Sprint("✓"), path)
	return nil
}

func displayMonth(w io.Writer, view *service.MonthView) {
	const nameWidth = 16

	fmt.Fprintf(w, "📅 %s\n\n", export.SheetName(view.Month))

	var header strings.Builder
	header.WriteString(fmt.Sprintf("%-*s", nameWidth, ""))
	for _, d := range view.Days {
		header.WriteString(fmt.Sprintf("%-3d", d.Day))
	}
	fmt.Fprintln(w, strings.TrimRight(header.String(), " "))

	holiday := color.New(color.FgHiBlack)
	for _, ep := range view.Employees {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%-*s", nameWidth, truncate(ep.Employee.MailNickname, nameWidth-1)))

		for _, record := range ep.Tasks {
			if record.IsEmpty() {
				cell := fmt.Sprintf("%-3s", "·")
				if view.IsHoliday(record.Day) {
					cell = holiday.Sprint(fmt.Sprintf("%-3s", "в"))
				}
				row.WriteString(cell)
				continue
			}

			cell := fmt.Sprintf("%-3s", export.ShortName(record.Task.Type))
			if c, ok := statusColors[record.Task.Type]; ok {
				cell = c.Sprint(cell)
			}
			row.WriteString(cell)
		}
		fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
	}

	if len(view.Employees) == 0 {
		fmt.Fprintln(w, "(no employees)")
	}

	if len(view.Warnings) > 0 {
		fmt.Fprintln(w)
		warn := color.New(color.FgYellow)
		for _, warning := range view.Warnings {
			fmt.Fprintf(w, "%s %s\n", warn.Sprint("!"), warning.String())
		}
	}

	fmt.Fprintln(w)
	var legend []string
	for _, t := range models.TaskTypes() {
		legend = append(legend, fmt.Sprintf("%s %s", export.ShortName(t), t.Name()))
	}
	fmt.Fprintf(w, "%s, в выходной, · нет данных\n", strings.Join(legend, ", "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
