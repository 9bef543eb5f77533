// Package notify рассылает уведомления об изменении присутствия: письма
// и пуши в Telegram подписчикам сотрудника и ему самому.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"presence-calendar/internal/models"

	"github.com/sirupsen/logrus"
)

// Notifier принимает событие о новом интервале. Ошибок не возвращает:
// сбой доставки не влияет на запись интервала.
type Notifier interface {
	Notify(ctx context.Context, subject, creator models.Employee, summary models.TaskSummary)
}

type FollowerSource interface {
	GetFollowers(ctx context.Context, login string) ([]models.Employee, error)
}

type MailSender interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

type PushSender interface {
	Push(ctx context.Context, chatID int64, text string) error
}

const pushTitle = "Изменение присутствия"

const defaultChannelTimeout = 20 * time.Second

// Fanout определяет получателей и раздает сообщение по каналам.
// Нулевой канал (nil) просто пропускается.
type Fanout struct {
	followers FollowerSource
	mail      MailSender
	push      PushSender
	baseURL   string
	logger    *logrus.Logger

	channelTimeout time.Duration
}

type FanoutOption func(*Fanout)

func WithMail(sender MailSender) FanoutOption {
	return func(f *Fanout) { f.mail = sender }
}

func WithPush(sender PushSender) FanoutOption {
	return func(f *Fanout) { f.push = sender }
}

// WithBaseURL адрес приложения для ссылки на аватар в пуше
func WithBaseURL(url string) FanoutOption {
	return func(f *Fanout) { f.baseURL = strings.TrimRight(url, "/") }
}

// WithChannelTimeout предельное время доставки по одному каналу
func WithChannelTimeout(d time.Duration) FanoutOption {
	return func(f *Fanout) {
		if d > 0 {
			f.channelTimeout = d
		}
	}
}

func WithFanoutLogger(logger *logrus.Logger) FanoutOption {
	return func(f *Fanout) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFanout(followers FollowerSource, opts ...FanoutOption) *Fanout {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	f := &Fanout{followers: followers, logger: logger, channelTimeout: defaultChannelTimeout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Notify рассылает уведомление. Каналы работают параллельно, каждый со своим
// сроком: зависание или ошибка одного канала не мешают другому. Ошибки
// получателей только логируются.
func (f *Fanout) Notify(ctx context.Context, subject, creator models.Employee, summary models.TaskSummary) {
	log := f.logger.WithFields(logrus.Fields{
		"task_id": summary.TaskID,
		"subject": subject.MailNickname,
		"creator": creator.MailNickname,
	})

	recipients, err := f.recipients(ctx, subject, creator)
	if err != nil {
		log.WithError(err).Error("Failed to resolve notification recipients")
		return
	}
	if len(recipients) == 0 {
		log.Debug("No notification recipients")
		return
	}

	var wg sync.WaitGroup
	if f.mail != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, f.channelTimeout)
			defer cancel()
			f.sendMail(cctx, log, recipients, subject, creator, summary)
		}()
	}
	if f.push != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, f.channelTimeout)
			defer cancel()
			f.sendPush(cctx, log, recipients, subject, creator, summary)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.WithError(ctx.Err()).Warn("Notification delivery did not finish in time")
	}
}

// recipients подписчики сотрудника и сам сотрудник, если интервал
// создал кто-то другой. Повторы по логину убираются.
func (f *Fanout) recipients(ctx context.Context, subject, creator models.Employee) ([]models.Employee, error) {
	followers, err := f.followers.GetFollowers(ctx, subject.MailNickname)
	if err != nil {
		return nil, fmt.Errorf("get followers of %s: %w", subject.MailNickname, err)
	}

	seen := make(map[string]bool, len(followers)+1)
	result := make([]models.Employee, 0, len(followers)+1)
	add := func(e models.Employee) {
		key := strings.ToLower(e.MailNickname)
		if seen[key] {
			return
		}
		seen[key] = true
		result = append(result, e)
	}

	for _, follower := range followers {
		add(follower)
	}
	if !strings.EqualFold(subject.MailNickname, creator.MailNickname) {
		add(subject)
	}

	return result, nil
}

func (f *Fanout) sendMail(ctx context.Context, log *logrus.Entry, recipients []models.Employee,
	subject, creator models.Employee, summary models.TaskSummary) {
	title, body := MailMessage(subject, creator, summary)

	for _, r := range recipients {
		if r.IsTerminated() || r.Email == "" {
			continue
		}
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Mail channel deadline exceeded, remaining recipients skipped")
			return
		}
		if err := f.mail.SendMail(ctx, r.Email, title, body); err != nil {
			log.WithError(err).WithField("recipient", r.MailNickname).Error("Failed to send mail")
			continue
		}
		log.WithField("recipient", r.MailNickname).Debug("Mail sent")
	}
}

func (f *Fanout) sendPush(ctx context.Context, log *logrus.Entry, recipients []models.Employee,
	subject, creator models.Employee, summary models.TaskSummary) {
	text := pushTitle + "\n" + PushBody(subject, creator, summary)
	if f.baseURL != "" {
		text += "\n" + f.baseURL + "/backend/avatar?login=" + subject.MailNickname
	}

	for _, r := range recipients {
		if !r.HasPushTarget() {
			continue
		}
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Push channel deadline exceeded, remaining recipients skipped")
			return
		}
		if err := f.push.Push(ctx, r.ChatID, text); err != nil {
			log.WithError(err).WithField("recipient", r.MailNickname).Error("Failed to send push")
			continue
		}
		log.WithField("recipient", r.MailNickname).Debug("Push sent")
	}
}

// PushBody текст пуша: кто, кому, на какой период и какой статус
func PushBody(subject, creator models.Employee, summary models.TaskSummary) string {
	period := "на " + summary.Period()
	if summary.DateEnd != nil {
		period = summary.Period()
	}
	return fmt.Sprintf("Пользователь %s изменил присутствие %s для %s на %s",
		creator.Username, period, subject.Username, summary.Type.Name())
}

// MailMessage тема и текст письма
func MailMessage(subject, creator models.Employee, summary models.TaskSummary) (string, string) {
	title := fmt.Sprintf("%s: %s", pushTitle, subject.Username)

	var b strings.Builder
	fmt.Fprintf(&b, "Автор: %s\n", creator.Username)
	fmt.Fprintf(&b, "Сотрудник: %s\n", subject.Username)
	fmt.Fprintf(&b, "Период: %s\n", summary.Period())
	fmt.Fprintf(&b, "Статус: %s\n", summary.Type.Name())
	if summary.Comment != "" {
		fmt.Fprintf(&b, "Комментарий: %s\n", summary.Comment)
	}
	return title, b.String()
}
