package service

import (
	"context"
	"fmt"
	"time"

	"presence-calendar/internal/models"
	"presence-calendar/internal/repository"
	"presence-calendar/pkg/weekends"

	"github.com/sirupsen/logrus"
)

type NonWorkingDayService struct {
	repo repository.NonWorkingDayRepository
}

func NewNonWorkingDayService(repo repository.NonWorkingDayRepository) *NonWorkingDayService {
	return &NonWorkingDayService{repo: repo}
}

// LoadFromFile загружает производственный календарь из JSON файла.
// Выходные дни года полностью заменяются.
func (s *NonWorkingDayService) LoadFromFile(ctx context.Context, filePath string) (*weekends.Calendar, error) {
	cal, err := weekends.ParseFile(filePath)
	if err != nil {
		return nil, err
	}

	if err := s.Load(ctx, cal); err != nil {
		return nil, err
	}

	return cal, nil
}

// Load сохраняет разобранный календарь
func (s *NonWorkingDayService) Load(ctx context.Context, cal *weekends.Calendar) error {
	days := make([]models.NonWorkingDay, 0, len(cal.Days))
	for _, wd := range cal.Days {
		date := models.NewDay(wd.Year, time.Month(wd.Month), wd.Day)
		days = append(days, models.NonWorkingDay{
			Date:  date,
			Year:  wd.Year,
			Month: wd.Month,
			Day:   wd.Day,
		})
	}

	if err := s.repo.ReplaceYear(ctx, cal.Year, days); err != nil {
		return fmt.Errorf("ошибка сохранения календаря %d: %w", cal.Year, err)
	}

	logrus.WithFields(logrus.Fields{
		"year": cal.Year,
		"days": len(days),
	}).Info("Non-working days loaded")

	return nil
}

// ForMonth выходные дни месяца по возрастанию
func (s *NonWorkingDayService) ForMonth(ctx context.Context, month models.Month) ([]models.Day, error) {
	stored, err := s.repo.GetByYearMonth(ctx, month.Year, int(month.Month))
	if err != nil {
		return nil, err
	}

	days := make([]models.Day, 0, len(stored))
	for _, d := range stored {
		days = append(days, d.Date)
	}
	return days, nil
}

// IsNonWorkingDay проверяет, является ли дата выходным днем
func (s *NonWorkingDayService) IsNonWorkingDay(ctx context.Context, date models.Day) (bool, error) {
	return s.repo.IsNonWorkingDay(ctx, date)
}
