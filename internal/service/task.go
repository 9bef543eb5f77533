package service

import (
	"context"
	"fmt"
	"time"

	"presence-calendar/internal/models"
	"presence-calendar/internal/notify"
	"presence-calendar/internal/repository"

	"github.com/sirupsen/logrus"
)

// TaskPatch частичное изменение интервала: nil означает "не менять"
type TaskPatch struct {
	Type      *models.TaskType `json:"type"`
	DateStart *models.Day      `json:"dateStart"`
	DateEnd   *models.Day      `json:"dateEnd"`
	ClearEnd  bool             `json:"clearDateEnd"`
	Comment   *string          `json:"comment"`
	Approved  *bool            `json:"approved"`
}

type TaskService struct {
	tasks     repository.TaskRepository
	employees repository.EmployeeRepository
	notifier  notify.Notifier
	now       func() time.Time
	logger    *logrus.Logger
}

func NewTaskService(
	tasks repository.TaskRepository,
	employees repository.EmployeeRepository,
	notifier notify.Notifier,
) *TaskService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &TaskService{
		tasks:     tasks,
		employees: employees,
		notifier:  notifier,
		now:       time.Now,
		logger:    logger,
	}
}

// SetLogger заменяет логгер сервиса
func (s *TaskService) SetLogger(logger *logrus.Logger) {
	s.logger = logger
}

// Create записывает новый интервал от имени creatorLogin и после успешной
// записи отправляет уведомление подписчикам.
func (s *TaskService) Create(ctx context.Context, creatorLogin string, input models.Task) (*models.Task, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	subject, err := s.lookup(ctx, input.Employee)
	if err != nil {
		return nil, err
	}
	creator, err := s.lookup(ctx, creatorLogin)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Employee:        subject.MailNickname,
		EmployeeCreated: creator.MailNickname,
		Type:            input.Type,
		DateStart:       input.DateStart,
		DateEnd:         input.DateEnd,
		Comment:         input.Comment,
		CreatedAt:       s.now(),
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("ошибка создания интервала: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":       task.ID,
		"employee": task.Employee,
		"creator":  task.EmployeeCreated,
		"type":     task.Type,
	}).Info("Task created")

	if s.notifier != nil {
		s.notifier.Notify(ctx, *subject, *creator, task.Summary())
	}

	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения интервала: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) ListByEmployee(ctx context.Context, login string) ([]models.Task, error) {
	return s.tasks.GetByEmployee(ctx, login)
}

func (s *TaskService) ListByAuthor(ctx context.Context, login string) ([]models.Task, error) {
	return s.tasks.GetByAuthor(ctx, login)
}

// Update применяет частичное изменение. Время создания не меняется,
// поэтому изменение не влияет на то, какой интервал побеждает в день.
// Уведомления повторно не отправляются.
func (s *TaskService) Update(ctx context.Context, id uint, patch TaskPatch) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Type != nil {
		task.Type = *patch.Type
	}
	if patch.DateStart != nil {
		task.DateStart = *patch.DateStart
	}
	if patch.ClearEnd {
		task.DateEnd = nil
	} else if patch.DateEnd != nil {
		end := *patch.DateEnd
		task.DateEnd = &end
	}
	if patch.Comment != nil {
		task.Comment = *patch.Comment
	}
	if patch.Approved != nil {
		task.Approved = *patch.Approved
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("ошибка обновления интервала: %w", err)
	}

	return task, nil
}

// attach сохраняет документ-основание и отметку об утверждении
func (s *TaskService) attach(ctx context.Context, task *models.Task, attachment models.Attachment) error {
	task.Attachment = attachment
	task.Approved = true
	if err := s.tasks.Update(ctx, task); err != nil {
		return fmt.Errorf("ошибка обновления интервала: %w", err)
	}
	return nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления интервала: %w", err)
	}
	if !deleted {
		return ErrTaskNotFound
	}

	s.logger.WithField("id", id).Info("Task deleted")
	return nil
}

func (s *TaskService) lookup(ctx context.Context, login string) (*models.Employee, error) {
	employee, err := s.employees.GetByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сотрудника: %w", err)
	}
	if employee == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, login)
	}
	return employee, nil
}
