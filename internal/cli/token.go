package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"presence-calendar/internal/api"
	"presence-calendar/internal/app"
	"presence-calendar/internal/config"
)

// TokenCmd выпускает JWT для сотрудника, например для проверки API
func TokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <login>",
		Short: "Issue an API token for an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			employee, err := a.Services.Employees.GetByLogin(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			token, err := api.IssueToken(cfg.JWTSecret, employee.MailNickname, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
