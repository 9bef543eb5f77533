// Package app собирает зависимости приложения из конфигурации:
// база, репозитории, сервисы, уведомления и движок календаря.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"presence-calendar/internal/api"
	"presence-calendar/internal/config"
	"presence-calendar/internal/handler"
	"presence-calendar/internal/notify"
	"presence-calendar/internal/presence"
	"presence-calendar/internal/repository"
	"presence-calendar/internal/service"
	"presence-calendar/internal/storage"
	"presence-calendar/pkg/telegram"
)

type App struct {
	Config     *config.Config
	DB         *gorm.DB
	Logger     *logrus.Logger
	Services   api.Services
	Dispatcher *notify.Dispatcher
	Telegram   *telegram.Client
}

type Option func(*App)

// WithTelegram подключает бота: пуши получателям и обработчик команд
func WithTelegram(client *telegram.Client) Option {
	return func(a *App) { a.Telegram = client }
}

// NewLogger логгер приложения с уровнем из конфигурации
func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(cfg.Level())
	return logger
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg, Logger: NewLogger(cfg)}
	for _, opt := range opts {
		opt(a)
	}

	db, err := repository.OpenDB(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DatabaseDebug)
	if err != nil {
		return nil, err
	}
	a.DB = db

	employeeRepo, err := repository.NewGormEmployeeRepository(db)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to create employee repository: %w", err))
	}
	taskRepo, err := repository.NewGormTaskRepository(db)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to create task repository: %w", err))
	}
	followRepo, err := repository.NewGormFollowRepository(db)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to create follow repository: %w", err))
	}
	holidayRepo, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to create non working day repository: %w", err))
	}

	files, err := storage.NewLocalStorage(cfg.FileStorageDir)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to prepare file storage: %w", err))
	}

	fanoutOpts := []notify.FanoutOption{
		notify.WithBaseURL(cfg.AppBaseURL),
		notify.WithFanoutLogger(a.Logger),
	}
	if cfg.MailEnabled() {
		fanoutOpts = append(fanoutOpts, notify.WithMail(
			notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)))
	} else {
		a.Logger.Info("SMTP is not configured, email notifications are disabled")
	}
	if a.Telegram != nil {
		fanoutOpts = append(fanoutOpts, notify.WithPush(a.Telegram))
	}

	fanout := notify.NewFanout(followRepo, fanoutOpts...)
	a.Dispatcher = notify.NewDispatcher(fanout, int(cfg.NotifyWorkers), int(cfg.NotifyQueueSize), a.Logger)

	engine := presence.NewEngine(taskRepo,
		presence.WithWorkers(int(cfg.ResolveWorkers)),
		presence.WithLogger(a.Logger),
	)

	holidays := service.NewNonWorkingDayService(holidayRepo)
	tasks := service.NewTaskService(taskRepo, employeeRepo, a.Dispatcher)
	tasks.SetLogger(a.Logger)
	presenceService := service.NewPresenceService(employeeRepo, engine, holidays)
	presenceService.SetLogger(a.Logger)

	a.Services = api.Services{
		Presence:    presenceService,
		Tasks:       tasks,
		Resolutions: service.NewResolutionService(tasks, files, cfg.FeatureFileStorage),
		Employees:   service.NewEmployeeService(employeeRepo),
		Follows:     service.NewFollowService(followRepo, employeeRepo),
		Holidays:    holidays,
	}

	return a, nil
}

// BotHandler обработчик команд Telegram, nil если бот не подключен
func (a *App) BotHandler() *handler.Handler {
	if a.Telegram == nil {
		return nil
	}
	h := handler.NewHandler(a.Telegram, a.Services.Employees, a.Services.Presence, a.Services.Follows,
		a.Services.Holidays)
	h.SetLogger(a.Logger)
	return h
}

// Close дожидается отправки уведомлений из очереди и закрывает базу
func (a *App) Close(ctx context.Context) error {
	if a.Dispatcher != nil {
		if err := a.Dispatcher.Stop(ctx); err != nil {
			a.Logger.WithError(err).Warn("Notification queue was not drained")
		}
	}
	if a.Telegram != nil {
		a.Telegram.StopUpdates()
	}
	if a.DB == nil {
		return nil
	}
	return repository.CloseDB(a.DB)
}

func (a *App) fail(err error) error {
	if closeErr := repository.CloseDB(a.DB); closeErr != nil {
		a.Logger.WithError(closeErr).Warn("Failed to close database")
	}
	return err
}
