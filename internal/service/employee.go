package service

import (
	"context"
	"fmt"

	"presence-calendar/internal/models"
	"presence-calendar/internal/repository"
)

type EmployeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

// Roster все сотрудники по алфавиту, с подразделением и должностью
func (s *EmployeeService) Roster(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.GetRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка сотрудников: %w", err)
	}
	return employees, nil
}

// GetByLogin ищет сотрудника по логину без учета регистра
func (s *EmployeeService) GetByLogin(ctx context.Context, login string) (*models.Employee, error) {
	employee, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сотрудника: %w", err)
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}

// GetByChatID сотрудник, привязавший чат Telegram
func (s *EmployeeService) GetByChatID(ctx context.Context, chatID int64) (*models.Employee, error) {
	employee, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сотрудника: %w", err)
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}

// LinkChat привязывает чат Telegram к сотруднику для пушей
func (s *EmployeeService) LinkChat(ctx context.Context, login string, chatID int64) (*models.Employee, error) {
	employee, err := s.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateChatID(ctx, employee.MailNickname, chatID); err != nil {
		return nil, fmt.Errorf("ошибка привязки чата: %w", err)
	}
	employee.ChatID = chatID

	return employee, nil
}
