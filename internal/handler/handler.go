package handler

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"presence-calendar/internal/service"
	"presence-calendar/pkg/telegram"
)

// Handler обработчик сообщений Telegram бота: привязка чата для пушей,
// просмотр своего месяца и подписки
type Handler struct {
	client    *telegram.Client
	employees *service.EmployeeService
	presence  *service.PresenceService
	follows   *service.FollowService
	holidays  *service.NonWorkingDayService
	logger    *logrus.Logger
}

func NewHandler(
	client *telegram.Client,
	employees *service.EmployeeService,
	presence *service.PresenceService,
	follows *service.FollowService,
	holidays *service.NonWorkingDayService,
) *Handler {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Handler{
		client:    client,
		employees: employees,
		presence:  presence,
		follows:   follows,
		holidays:  holidays,
		logger:    logger,
	}
}

// SetLogger заменяет логгер обработчика
func (h *Handler) SetLogger(logger *logrus.Logger) {
	h.logger = logger
}

// HandleUpdates читает обновления до закрытия канала или отмены ctx
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userName := ""
	if message.From != nil {
		userName = message.From.UserName
	}
	h.logger.Infof("[%s] %s", userName, message.Text)

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.reply(message.Chat.ID, "ℹ️ Я понимаю только команды. Используйте /help для списка команд.")
}

func (h *Handler) reply(chatID int64, text string) {
	if err := h.client.SendText(chatID, text); err != nil {
		h.logger.WithError(err).Errorf("Failed to send message to chat %d", chatID)
	}
}
