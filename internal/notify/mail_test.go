package notify

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/wneessen/go-mail"
)

func TestSMTPMailer_SendMail(t *testing.T) {
	m := NewSMTPMailer("smtp.example", 587, "bot", "pass", "calendar@example.com")

	var got *mail.Msg
	m.send = func(_ context.Context, msg *mail.Msg) error {
		got = msg
		return nil
	}

	if err := m.SendMail(context.Background(), "ivanov@example.com", "Изменение присутствия", "текст"); err != nil {
		t.Fatalf("SendMail failed: %v", err)
	}

	rcpts, err := got.GetRecipients()
	if err != nil {
		t.Fatalf("GetRecipients failed: %v", err)
	}
	if len(rcpts) != 1 || rcpts[0] != "ivanov@example.com" {
		t.Errorf("one message per recipient expected, got %v", rcpts)
	}
	if sender, err := got.GetSender(false); err != nil || sender != "calendar@example.com" {
		t.Errorf("unexpected sender %q (%v)", sender, err)
	}
	if subject := got.GetGenHeader(mail.HeaderSubject); len(subject) != 1 || subject[0] != "Изменение присутствия" {
		t.Errorf("unexpected subject %v", subject)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.SendMail(ctx, "ivanov@example.com", "s", "b"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSMTPMailer_InvalidRecipient(t *testing.T) {
	m := NewSMTPMailer("smtp.example", 25, "", "", "calendar@example.com")
	m.send = func(context.Context, *mail.Msg) error {
		t.Fatal("send must not be called")
		return nil
	}

	if err := m.SendMail(context.Background(), "not an address", "s", "b"); err == nil {
		t.Error("expected error for invalid recipient")
	}
}

// Сервер принимает соединение и молчит: отправка должна завершиться по ctx
func TestSMTPMailer_SilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	port := ln.Addr().(*net.TCPAddr).Port
	m := NewSMTPMailer("127.0.0.1", int64(port), "", "", "calendar@example.com")
	m.timeout = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = m.SendMail(ctx, "ivanov@example.com", "s", "b")
	if err == nil {
		t.Fatal("expected error from silent server")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("SendMail blocked for %v", elapsed)
	}
}
