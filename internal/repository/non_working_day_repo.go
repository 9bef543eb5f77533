package repository

import (
	"context"

	"presence-calendar/internal/models"

	"gorm.io/gorm"
)

type NonWorkingDayRepository interface {
	GetByYearMonth(ctx context.Context, year, month int) ([]models.NonWorkingDay, error)
	GetByYear(ctx context.Context, year int) ([]models.NonWorkingDay, error)
	ReplaceYear(ctx context.Context, year int, days []models.NonWorkingDay) error
	IsNonWorkingDay(ctx context.Context, date models.Day) (bool, error)
}

type GormNonWorkingDayRepository struct {
	db *gorm.DB
}

func NewGormNonWorkingDayRepository(db *gorm.DB) (*GormNonWorkingDayRepository, error) {
	// Автомиграция для таблицы non_working_days
	if err := db.AutoMigrate(&models.NonWorkingDay{}); err != nil {
		return nil, err
	}

	return &GormNonWorkingDayRepository{db: db}, nil
}

func (r *GormNonWorkingDayRepository) GetByYearMonth(ctx context.Context, year, month int) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.WithContext(ctx).Where("year = ? AND month = ?", year, month).Order("day ASC").Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) GetByYear(ctx context.Context, year int) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.WithContext(ctx).Where("year = ?", year).Order("month ASC, day ASC").Find(&days).Error
	return days, err
}

// ReplaceYear заменяет выходные дни года одной транзакцией
func (r *GormNonWorkingDayRepository) ReplaceYear(ctx context.Context, year int, days []models.NonWorkingDay) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("year = ?", year).Delete(&models.NonWorkingDay{}).Error; err != nil {
			return err
		}
		if len(days) == 0 {
			return nil
		}
		return tx.Create(&days).Error
	})
}

func (r *GormNonWorkingDayRepository) IsNonWorkingDay(ctx context.Context, date models.Day) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NonWorkingDay{}).
		Where("date = ?", date).
		Count(&count).Error
	return count > 0, err
}
