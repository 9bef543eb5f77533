package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"presence-calendar/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Employee presence calendar",
		Long: `Presence calendar: who is in the office, on vacation or sick
on every day of a month. Runs the HTTP API and Telegram bot,
and offers maintenance commands for the production calendar.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.MonthCmd())
	rootCmd.AddCommand(cli.HolidaysCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
