package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender то, что умеет отправлять сообщения в Telegram (tgbotapi.BotAPI)
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Client struct {
	Bot          *tgbotapi.BotAPI
	UpdateConfig tgbotapi.UpdateConfig
	sender       Sender
}

func NewClient(token string, debug bool) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	bot.Debug = debug

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	return &Client{
		Bot:          bot,
		UpdateConfig: updateConfig,
		sender:       bot,
	}, nil
}

// NewClientWithSender клиент без подключения к Telegram, для тестов
func NewClientWithSender(sender Sender) *Client {
	return &Client{sender: sender}
}

// SendText отправляет простое текстовое сообщение
func (c *Client) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := c.sender.Send(msg)
	return err
}

// Push отправляет уведомление в чат сотрудника
func (c *Client) Push(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.SendText(chatID, text); err != nil {
		return fmt.Errorf("telegram push to %d: %w", chatID, err)
	}
	return nil
}

// Updates канал входящих сообщений бота
func (c *Client) Updates() tgbotapi.UpdatesChannel {
	return c.Bot.GetUpdatesChan(c.UpdateConfig)
}

// StopUpdates останавливает long polling
func (c *Client) StopUpdates() {
	if c.Bot != nil {
		c.Bot.StopReceivingUpdates()
	}
}
