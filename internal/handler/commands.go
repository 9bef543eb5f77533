package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"presence-calendar/internal/models"
	"presence-calendar/internal/presence"
	"presence-calendar/internal/service"
)

var monthNames = [...]string{
	"", "Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var weekdayNames = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := strings.TrimSpace(message.CommandArguments())

	switch command {
	case "start":
		h.start(ctx, message, args)
	case "help":
		h.sendHelpMessage(message)
	case "month":
		h.showMonth(ctx, message, args)
	case "follow":
		h.follow(ctx, message, args)
	case "unfollow":
		h.unfollow(ctx, message, args)
	case "following":
		h.showFollowing(ctx, message)
	case "checkday":
		h.checkDay(ctx, message, args)
	default:
		h.sendUnknownCommand(message)
	}
}

// start привязывает чат к сотруднику по логину
func (h *Handler) start(ctx context.Context, message *tgbotapi.Message, login string) {
	chatID := message.Chat.ID

	if login == "" {
		h.reply(chatID, "👋 Привет! Я присылаю уведомления об изменениях в календаре присутствия.\n\n"+
			"Чтобы получать пуши, привяжите чат: /start ваш_логин\n"+
			"Список команд: /help")
		return
	}

	employee, err := h.employees.LinkChat(ctx, login, chatID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, fmt.Sprintf("✅ Чат привязан к сотруднику %s (%s).", employee.Username, employee.MailNickname))
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	h.reply(message.Chat.ID, `📋 Доступные команды:

/start логин - Привязать чат для уведомлений
/month [ММ.ГГГГ] - Мой календарь присутствия за месяц
    Пример: /month 03.2024
/follow логин - Подписаться на изменения сотрудника
/unfollow логин - Отписаться
/following - Мои подписки
/checkday ДД.ММ.ГГГГ - Проверить, является ли день рабочим
    Пример: /checkday 08.03.2024
/help - Показать это сообщение`)
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.reply(message.Chat.ID, "❌ Неизвестная команда. Используйте /help для списка команд.")
}

// showMonth календарь привязанного сотрудника: только дни, на которые есть записи
func (h *Handler) showMonth(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	employee, ok := h.currentEmployee(ctx, chatID)
	if !ok {
		return
	}

	month := models.MonthOf(models.DayOf(time.Now()))
	if args != "" {
		parsed, err := parseMonthArg(args)
		if err != nil {
			h.reply(chatID, "❌ Некорректный месяц. Используйте формат ММ.ГГГГ, например /month 03.2024")
			return
		}
		month = parsed
	}

	view, err := h.presence.MonthByDate(ctx, month.First())
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, formatMonth(view, employee))
}

func (h *Handler) follow(ctx context.Context, message *tgbotapi.Message, login string) {
	chatID := message.Chat.ID
	if login == "" {
		h.reply(chatID, "❌ Укажите логин: /follow логин")
		return
	}

	employee, ok := h.currentEmployee(ctx, chatID)
	if !ok {
		return
	}

	if err := h.follows.Follow(ctx, employee.MailNickname, login); err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, fmt.Sprintf("🔔 Вы подписаны на изменения %s.", strings.ToLower(login)))
}

func (h *Handler) unfollow(ctx context.Context, message *tgbotapi.Message, login string) {
	chatID := message.Chat.ID
	if login == "" {
		h.reply(chatID, "❌ Укажите логин: /unfollow логин")
		return
	}

	employee, ok := h.currentEmployee(ctx, chatID)
	if !ok {
		return
	}

	if err := h.follows.Unfollow(ctx, employee.MailNickname, login); err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, fmt.Sprintf("🔕 Подписка на %s отменена.", strings.ToLower(login)))
}

func (h *Handler) showFollowing(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	employee, ok := h.currentEmployee(ctx, chatID)
	if !ok {
		return
	}

	logins, err := h.follows.Following(ctx, employee.MailNickname)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if len(logins) == 0 {
		h.reply(chatID, "📭 У вас нет подписок.")
		return
	}

	h.reply(chatID, "🔔 Ваши подписки:\n"+strings.Join(logins, "\n"))
}

// checkDay сверяет дату с производственным календарем
func (h *Handler) checkDay(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	date, err := time.Parse("02.01.2006", args)
	if err != nil {
		h.reply(chatID, "❌ Некорректная дата. Используйте формат ДД.ММ.ГГГГ, например /checkday 08.03.2024")
		return
	}
	day := models.DayOf(date)

	nonWorking, err := h.holidays.IsNonWorkingDay(ctx, day)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if nonWorking {
		h.reply(chatID, fmt.Sprintf("🎉 %s %s: выходной день", day.Format(), weekdayNames[date.Weekday()]))
		return
	}
	h.reply(chatID, fmt.Sprintf("💼 %s %s: рабочий день", day.Format(), weekdayNames[date.Weekday()]))
}

// currentEmployee сотрудник, к которому привязан чат. Если чат не привязан,
// отвечает подсказкой и возвращает false.
func (h *Handler) currentEmployee(ctx context.Context, chatID int64) (*models.Employee, bool) {
	employee, err := h.employees.GetByChatID(ctx, chatID)
	if errors.Is(err, service.ErrEmployeeNotFound) {
		h.reply(chatID, "❌ Чат не привязан к сотруднику. Используйте /start ваш_логин")
		return nil, false
	}
	if err != nil {
		h.replyError(chatID, err)
		return nil, false
	}
	return employee, true
}

func (h *Handler) replyError(chatID int64, err error) {
	var retrieval *presence.RetrievalError

	switch {
	case errors.As(err, &retrieval):
		h.logger.WithError(err).Error("Calendar unavailable")
		h.reply(chatID, "⚠️ Календарь временно недоступен, попробуйте позже.")
	case errors.Is(err, service.ErrEmployeeNotFound):
		h.reply(chatID, "❌ Сотрудник не найден.")
	case errors.Is(err, service.ErrSelfFollow):
		h.reply(chatID, "❌ Нельзя подписаться на самого себя.")
	default:
		h.logger.WithError(err).Error("Command failed")
		h.reply(chatID, "❌ Ошибка: "+err.Error())
	}
}

// parseMonthArg разбирает месяц в формате ММ.ГГГГ
func parseMonthArg(s string) (models.Month, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return models.Month{}, fmt.Errorf("invalid month %q", s)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return models.Month{}, fmt.Errorf("invalid month %q", s)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || year < 1 {
		return models.Month{}, fmt.Errorf("invalid year %q", s)
	}

	return models.Month{Year: year, Month: time.Month(month)}, nil
}

// monthArg месяц в формате аргумента /month
func monthArg(m models.Month) string {
	return fmt.Sprintf("%02d.%04d", int(m.Month), m.Year)
}

func formatMonth(view *service.MonthView, employee *models.Employee) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 %s %d, %s\n\n", monthNames[view.Month.Month], view.Month.Year, employee.Username)

	own, ok := view.Get(employee.MailNickname)
	if !ok {
		sb.WriteString("Вы не числитесь в штате в этом месяце.")
		return sb.String()
	}

	written := 0
	for _, record := range own.Tasks {
		if record.IsEmpty() {
			continue
		}
		line := fmt.Sprintf("%s %s: %s", record.Day.Time().Format("02.01"),
			weekdayNames[record.Day.Time().Weekday()], record.Task.Type.Name())
		if view.IsHoliday(record.Day) {
			line += " 🎉"
		}
		if record.Task.Comment != "" {
			line += " (" + record.Task.Comment + ")"
		}
		sb.WriteString(line + "\n")
		written++
	}
	if written == 0 {
		sb.WriteString("На этот месяц записей нет.\n")
	}

	if len(view.Holidays) > 0 {
		days := make([]string, len(view.Holidays))
		for i, d := range view.Holidays {
			days[i] = strconv.Itoa(d.Day)
		}
		fmt.Fprintf(&sb, "\n🎉 Выходные и праздники: %s\n", strings.Join(days, ", "))
	}

	fmt.Fprintf(&sb, "\n◀️ /month %s   ▶️ /month %s", monthArg(view.Month.Prev()), monthArg(view.Month.Next()))

	return strings.TrimRight(sb.String(), "\n")
}
