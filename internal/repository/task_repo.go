package repository

import (
	"context"
	"errors"
	"io"

	"presence-calendar/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	GetByEmployee(ctx context.Context, login string) ([]models.Task, error)
	GetByAuthor(ctx context.Context, login string) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) (bool, error)
	FetchIntervalsOverlapping(ctx context.Context, employees []string, start, end models.Day) ([]models.Task, error)
}

type GormTaskRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormTaskRepository(db *gorm.DB) (*GormTaskRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// Автомиграция
	if err := db.AutoMigrate(&models.Task{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate tasks table")
		return nil, err
	}

	logger.Info("Task repository initialized")

	return &GormTaskRepository{
		db:     db,
		logger: logger,
	}, nil
}

// SetLogOutput перенаправляет логи репозитория
func (r *GormTaskRepository) SetLogOutput(w io.Writer) {
	r.logger.SetOutput(w)
}

func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	result := r.db.WithContext(ctx).Create(task)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to create task")
		return result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"id":       task.ID,
		"employee": task.Employee,
		"type":     task.Type,
	}).Debug("Task created")

	return nil
}

func (r *GormTaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	result := r.db.WithContext(ctx).First(&task, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Task not found")
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get task by ID")
		return nil, result.Error
	}

	return &task, nil
}

func (r *GormTaskRepository) GetByEmployee(ctx context.Context, login string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).Where("employee = ?", login).
		Order("date_start DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) GetByAuthor(ctx context.Context, login string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).Where("employee_created = ?", login).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// Update сохраняет интервал целиком. Время создания не меняется.
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	result := r.db.WithContext(ctx).Omit("created_at").Save(task)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update task")
		return result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"id":       task.ID,
		"employee": task.Employee,
	}).Debug("Task updated")

	return nil
}

// Delete возвращает false, если удалять было нечего
func (r *GormTaskRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete task")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FetchIntervalsOverlapping выбирает интервалы, пересекающиеся с [start, end]:
// начало внутри окна, конец внутри окна, либо интервал накрывает окно целиком.
// Пустой список сотрудников означает всех сотрудников.
func (r *GormTaskRepository) FetchIntervalsOverlapping(
	ctx context.Context,
	employees []string,
	start, end models.Day,
) ([]models.Task, error) {
	query := r.db.WithContext(ctx).
		Where("((date_start BETWEEN ? AND ?) OR "+
			"(date_end BETWEEN ? AND ?) OR "+
			"(date_start <= ? AND date_end >= ?))",
			start, end,
			start, end,
			start, end)
	if len(employees) > 0 {
		query = query.Where("employee IN ?", employees)
	}

	var tasks []models.Task
	if err := query.Order("id ASC").Find(&tasks).Error; err != nil {
		r.logger.WithError(err).Error("Failed to fetch overlapping tasks")
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"start":     start.String(),
		"end":       end.String(),
		"employees": len(employees),
		"count":     len(tasks),
	}).Debug("Retrieved overlapping tasks")

	return tasks, nil
}
