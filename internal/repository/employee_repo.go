package repository

import (
	"context"
	"errors"

	"presence-calendar/internal/models"

	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id uint) (*models.Employee, error)
	GetByLogin(ctx context.Context, login string) (*models.Employee, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.Employee, error)
	GetRoster(ctx context.Context) ([]models.Employee, error)
	UpdateChatID(ctx context.Context, login string, chatID int64) error
}

type GormEmployeeRepository struct {
	db *gorm.DB
}

func NewGormEmployeeRepository(db *gorm.DB) (*GormEmployeeRepository, error) {
	// Автомиграция - создает таблицы если их нет
	err := db.AutoMigrate(&models.Subdivision{}, &models.JobPosition{}, &models.Employee{})
	if err != nil {
		return nil, err
	}

	return &GormEmployeeRepository{db: db}, nil
}

func (r *GormEmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	exists, err := r.Exists(ctx, employee.MailNickname)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("сотрудник уже существует")
	}

	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *GormEmployeeRepository) GetByID(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	result := r.preloaded(ctx).First(&employee, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &employee, nil
}

// GetByLogin ищет сотрудника по логину без учета регистра
func (r *GormEmployeeRepository) GetByLogin(ctx context.Context, login string) (*models.Employee, error) {
	var employee models.Employee
	result := r.preloaded(ctx).Where("LOWER(mail_nickname) = LOWER(?)", login).First(&employee)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &employee, nil
}

func (r *GormEmployeeRepository) GetByChatID(ctx context.Context, chatID int64) (*models.Employee, error) {
	var employee models.Employee
	result := r.preloaded(ctx).Where("chat_id = ?", chatID).First(&employee)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &employee, nil
}

// GetRoster возвращает всех сотрудников, отсортированных по имени,
// с уже подгруженными подразделением и должностью
func (r *GormEmployeeRepository) GetRoster(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	result := r.preloaded(ctx).Order("username ASC").Find(&employees)

	if result.Error != nil {
		return nil, result.Error
	}

	return employees, nil
}

func (r *GormEmployeeRepository) UpdateChatID(ctx context.Context, login string, chatID int64) error {
	result := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("LOWER(mail_nickname) = LOWER(?)", login).
		Update("chat_id", chatID)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errors.New("сотрудник не найден")
	}

	return nil
}

func (r *GormEmployeeRepository) Exists(ctx context.Context, login string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("LOWER(mail_nickname) = LOWER(?)", login).
		Count(&count)

	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (r *GormEmployeeRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Subdivision").Preload("JobPosition")
}
