package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"presence-calendar/internal/models"

	"github.com/sirupsen/logrus"
)

type fakeFollowers struct {
	byLogin map[string][]models.Employee
	err     error
}

func (f *fakeFollowers) GetFollowers(_ context.Context, login string) ([]models.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byLogin[login], nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo string
}

func (m *fakeMailer) SendMail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if to == m.failTo {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sent {
		out = append(out, s.to)
	}
	return out
}

type fakePusher struct {
	mu    sync.Mutex
	chats []int64
	texts []string
	err   error
}

func (p *fakePusher) Push(_ context.Context, chatID int64, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.chats = append(p.chats, chatID)
	p.texts = append(p.texts, text)
	return nil
}

// stuckMailer не отвечает и не смотрит на ctx, пока его не отпустят
type stuckMailer struct {
	release chan struct{}
}

func (m *stuckMailer) SendMail(context.Context, string, string, string) error {
	<-m.release
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func person(login, name string, chatID int64) models.Employee {
	return models.Employee{Username: name, MailNickname: login, Email: login + "@example.com", ChatID: chatID}
}

func vacationSummary() models.TaskSummary {
	end := models.MustParseDay("2024-03-10")
	return models.TaskSummary{
		TaskID:    1,
		Type:      models.TaskTypeVacation,
		DateStart: models.MustParseDay("2024-03-05"),
		DateEnd:   &end,
		Comment:   "море",
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFanout_SubjectAddedWhenCreatorDiffers(t *testing.T) {
	ivanov := person("ivanov", "Иванов", 11)
	manager := person("sidorov", "Сидоров", 33)
	followers := &fakeFollowers{byLogin: map[string][]models.Employee{
		"ivanov": {person("petrov", "Петров", 22)},
	}}
	mailer := &fakeMailer{}
	pusher := &fakePusher{}
	f := NewFanout(followers, WithMail(mailer), WithPush(pusher), WithFanoutLogger(quietLogger()))

	f.Notify(context.Background(), ivanov, manager, vacationSummary())

	if got := mailer.recipients(); !equalStrings(got, []string{"petrov@example.com", "ivanov@example.com"}) {
		t.Errorf("unexpected mail recipients %v", got)
	}
	if len(pusher.chats) != 2 || pusher.chats[0] != 22 || pusher.chats[1] != 11 {
		t.Errorf("unexpected push chats %v", pusher.chats)
	}
	if !strings.Contains(pusher.texts[0], "Пользователь Сидоров изменил присутствие c 05.03.2024 по 10.03.2024 для Иванов на Отпуск") {
		t.Errorf("unexpected push text %q", pusher.texts[0])
	}
}

func TestFanout_SelfEditNotifiesOnlyFollowers(t *testing.T) {
	ivanov := person("ivanov", "Иванов", 11)
	followers := &fakeFollowers{byLogin: map[string][]models.Employee{
		"ivanov": {person("petrov", "Петров", 0)},
	}}
	mailer := &fakeMailer{}
	pusher := &fakePusher{}
	f := NewFanout(followers, WithMail(mailer), WithPush(pusher), WithFanoutLogger(quietLogger()))

	f.Notify(context.Background(), ivanov, ivanov, vacationSummary())

	if got := mailer.recipients(); !equalStrings(got, []string{"petrov@example.com"}) {
		t.Errorf("unexpected mail recipients %v", got)
	}
	if len(pusher.chats) != 0 {
		t.Errorf("petrov has no linked chat, expected no pushes, got %v", pusher.chats)
	}
}

func TestFanout_TerminatedSkippedForMailOnly(t *testing.T) {
	gone := person("petrov", "Петров", 22)
	term := models.MustParseDay("2023-12-31")
	gone.TerminationDate = &term

	followers := &fakeFollowers{byLogin: map[string][]models.Employee{"ivanov": {gone}}}
	mailer := &fakeMailer{}
	pusher := &fakePusher{}
	f := NewFanout(followers, WithMail(mailer), WithPush(pusher), WithFanoutLogger(quietLogger()))

	ivanov := person("ivanov", "Иванов", 0)
	f.Notify(context.Background(), ivanov, ivanov, vacationSummary())

	if len(mailer.recipients()) != 0 {
		t.Errorf("terminated employee must not receive mail, got %v", mailer.recipients())
	}
	if len(pusher.chats) != 1 || pusher.chats[0] != 22 {
		t.Errorf("terminated employee still receives push, got %v", pusher.chats)
	}
}

func TestFanout_FailuresAreIsolated(t *testing.T) {
	followers := &fakeFollowers{byLogin: map[string][]models.Employee{
		"ivanov": {person("petrov", "Петров", 22), person("kozlov", "Козлов", 44)},
	}}
	mailer := &fakeMailer{failTo: "petrov@example.com"}
	pusher := &fakePusher{err: errors.New("telegram is down")}
	f := NewFanout(followers, WithMail(mailer), WithPush(pusher), WithFanoutLogger(quietLogger()))

	ivanov := person("ivanov", "Иванов", 0)
	f.Notify(context.Background(), ivanov, ivanov, vacationSummary())

	if got := mailer.recipients(); !equalStrings(got, []string{"kozlov@example.com"}) {
		t.Errorf("mail to kozlov must go out despite failure for petrov, got %v", got)
	}
}

func TestFanout_FollowerLookupFailure(t *testing.T) {
	mailer := &fakeMailer{}
	f := NewFanout(&fakeFollowers{err: errors.New("db down")}, WithMail(mailer), WithFanoutLogger(quietLogger()))

	f.Notify(context.Background(), person("ivanov", "Иванов", 0), person("sidorov", "Сидоров", 0), vacationSummary())

	if len(mailer.recipients()) != 0 {
		t.Error("nothing must be sent when recipients cannot be resolved")
	}
}

func TestFanout_DeduplicatesRecipients(t *testing.T) {
	ivanov := person("ivanov", "Иванов", 11)
	followers := &fakeFollowers{byLogin: map[string][]models.Employee{
		"ivanov": {ivanov},
	}}
	mailer := &fakeMailer{}
	f := NewFanout(followers, WithMail(mailer), WithFanoutLogger(quietLogger()))

	f.Notify(context.Background(), ivanov, person("sidorov", "Сидоров", 0), vacationSummary())

	if got := mailer.recipients(); len(got) != 1 {
		t.Errorf("expected a single mail, got %v", got)
	}
}

func TestFanout_StuckMailDoesNotBlockPush(t *testing.T) {
	mailer := &stuckMailer{release: make(chan struct{})}
	t.Cleanup(func() { close(mailer.release) })
	pusher := &fakePusher{}
	f := NewFanout(&fakeFollowers{}, WithMail(mailer), WithPush(pusher),
		WithChannelTimeout(time.Second), WithFanoutLogger(quietLogger()))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	f.Notify(ctx, person("ivanov", "Иванов", 11), person("sidorov", "Сидоров", 0), vacationSummary())
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Notify blocked for %v", elapsed)
	}

	pusher.mu.Lock()
	defer pusher.mu.Unlock()
	if len(pusher.chats) != 1 || pusher.chats[0] != 11 {
		t.Errorf("push must be delivered while mail hangs, got %v", pusher.chats)
	}
}

func TestMailMessage(t *testing.T) {
	summary := vacationSummary()
	summary.DateEnd = nil

	title, body := MailMessage(person("ivanov", "Иванов", 0), person("sidorov", "Сидоров", 0), summary)

	if title != "Изменение присутствия: Иванов" {
		t.Errorf("unexpected title %q", title)
	}
	for _, want := range []string{"Автор: Сидоров", "Период: 05.03.2024", "Статус: Отпуск", "Комментарий: море"} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q does not contain %q", body, want)
		}
	}
}
