package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"presence-calendar/internal/api"
	"presence-calendar/internal/app"
	"presence-calendar/internal/config"
	"presence-calendar/pkg/telegram"
)

const shutdownTimeout = 15 * time.Second

// ServeCmd запускает HTTP API, очередь уведомлений и Telegram бота
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API and Telegram bot",
		Long: `Start the presence calendar HTTP API.

If TELEGRAM_BOT_TOKEN is set, the bot is started too and followers
receive push notifications. Email notifications require SMTP_HOST.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.Get())
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}

	var opts []app.Option
	if cfg.TelegramEnabled() {
		client, err := telegram.NewClient(cfg.TelegramToken, false)
		if err != nil {
			return fmt.Errorf("failed to create Telegram client: %w", err)
		}
		opts = append(opts, app.WithTelegram(client))
	}

	a, err := app.New(cfg, opts...)
	if err != nil {
		return err
	}
	if a.Telegram != nil {
		a.Logger.Infof("Authorized on account %s", a.Telegram.Bot.Self.UserName)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Dispatcher.Start()
	if bot := a.BotHandler(); bot != nil {
		go bot.HandleUpdates(ctx, a.Telegram.Updates())
	}

	router := api.NewRouter(api.NewHandler(a.Services), api.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      a.Logger,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutting down...")
	case runErr = <-serveErr:
		if runErr != nil {
			runErr = fmt.Errorf("http server: %w", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.WithError(err).Warn("HTTP server shutdown failed")
	}
	if err := a.Close(shutdownCtx); err != nil {
		return fmt.Errorf("error closing database: %w", err)
	}

	a.Logger.Info("Stopped gracefully")
	return runErr
}
