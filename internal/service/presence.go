package service

import (
	"context"

	"presence-calendar/internal/models"
	"presence-calendar/internal/presence"
	"presence-calendar/internal/repository"

	"github.com/sirupsen/logrus"
)

// MonthView календарь присутствия за месяц вместе с выходными днями
type MonthView struct {
	*presence.MonthPresence
	Holidays []models.Day `json:"holidays"`
}

// IsHoliday проверяет, выходной ли день
func (v *MonthView) IsHoliday(day models.Day) bool {
	for _, h := range v.Holidays {
		if h == day {
			return true
		}
	}
	return false
}

type PresenceService struct {
	employees repository.EmployeeRepository
	engine    *presence.Engine
	holidays  *NonWorkingDayService
	logger    *logrus.Logger
}

func NewPresenceService(
	employees repository.EmployeeRepository,
	engine *presence.Engine,
	holidays *NonWorkingDayService,
) *PresenceService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &PresenceService{
		employees: employees,
		engine:    engine,
		holidays:  holidays,
		logger:    logger,
	}
}

// SetLogger заменяет логгер сервиса
func (s *PresenceService) SetLogger(logger *logrus.Logger) {
	s.logger = logger
}

// MonthByDate строит календарь месяца, в который попадает date.
// Любая ошибка получения данных возвращается как *presence.RetrievalError,
// пустой календарь вместо ошибки не отдается.
func (s *PresenceService) MonthByDate(ctx context.Context, date models.Day) (*MonthView, error) {
	month := models.MonthOf(date)

	roster, err := s.employees.GetRoster(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("month", month.String()).Error("Failed to load roster")
		return nil, &presence.RetrievalError{Op: "fetch roster", Err: err}
	}

	result, err := s.engine.ResolveMonth(ctx, month, roster)
	if err != nil {
		s.logger.WithError(err).WithField("month", month.String()).Error("Failed to resolve month")
		return nil, err
	}

	view := &MonthView{MonthPresence: result, Holidays: []models.Day{}}
	if s.holidays != nil {
		days, err := s.holidays.ForMonth(ctx, month)
		if err != nil {
			s.logger.WithError(err).WithField("month", month.String()).Warn("Failed to load non-working days")
		} else {
			view.Holidays = days
		}
	}

	return view, nil
}
