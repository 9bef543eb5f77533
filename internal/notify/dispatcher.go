package notify

import (
	"context"
	"sync"
	"time"

	"presence-calendar/internal/models"

	"github.com/sirupsen/logrus"
)

const defaultJobTimeout = 30 * time.Second

type job struct {
	subject models.Employee
	creator models.Employee
	summary models.TaskSummary
}

// Dispatcher ставит уведомления в ограниченную очередь и отправляет их
// фоновыми воркерами. При переполнении очереди уведомление теряется.
type Dispatcher struct {
	target     Notifier
	jobs       chan job
	workers    int
	jobTimeout time.Duration
	logger     *logrus.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	start   sync.Once
}

func NewDispatcher(target Notifier, workers, queueSize int, logger *logrus.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Dispatcher{
		target:     target,
		jobs:       make(chan job, queueSize),
		workers:    workers,
		jobTimeout: defaultJobTimeout,
		logger:     logger,
	}
}

// Start запускает воркеров. Повторный вызов ничего не делает.
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.run()
		}
		d.logger.WithField("workers", d.workers).Info("Notification dispatcher started")
	})
}

// Notify не блокирует вызывающего: событие уходит в очередь.
// Контекст запроса не передается воркеру, у каждой отправки свой таймаут.
func (d *Dispatcher) Notify(_ context.Context, subject, creator models.Employee, summary models.TaskSummary) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	log := d.logger.WithFields(logrus.Fields{
		"task_id": summary.TaskID,
		"subject": subject.MailNickname,
	})
	if d.stopped {
		log.Warn("Notification dropped: dispatcher stopped")
		return
	}

	select {
	case d.jobs <- job{subject: subject, creator: creator, summary: summary}:
	default:
		log.Warn("Notification dropped: queue is full")
	}
}

// Stop закрывает очередь и ждет, пока воркеры разберут оставшееся,
// но не дольше, чем позволяет ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.jobs)
	}
	d.mu.Unlock()

	// Без Start воркеров нет, очередь разбирать некому
	d.Start()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.logger.WithFields(logrus.Fields{
				"task_id": j.summary.TaskID,
				"panic":   r,
			}).Error("Notification delivery panicked")
		}
	}()

	d.target.Notify(ctx, j.subject, j.creator, j.summary)
}
