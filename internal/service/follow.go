package service

import (
	"context"
	"fmt"
	"strings"

	"presence-calendar/internal/models"
	"presence-calendar/internal/repository"
)

// FollowService подписки на изменения присутствия коллег
type FollowService struct {
	follows   repository.FollowRepository
	employees repository.EmployeeRepository
}

func NewFollowService(follows repository.FollowRepository, employees repository.EmployeeRepository) *FollowService {
	return &FollowService{follows: follows, employees: employees}
}

func (s *FollowService) Follow(ctx context.Context, follower, following string) error {
	target, err := s.resolve(ctx, following)
	if err != nil {
		return err
	}
	if strings.EqualFold(target.MailNickname, follower) {
		return ErrSelfFollow
	}

	if err := s.follows.Follow(ctx, follower, target.MailNickname); err != nil {
		return fmt.Errorf("ошибка подписки: %w", err)
	}
	return nil
}

// Unfollow возвращает ErrEmployeeNotFound, если подписки не было
func (s *FollowService) Unfollow(ctx context.Context, follower, following string) error {
	target, err := s.resolve(ctx, following)
	if err != nil {
		return err
	}

	removed, err := s.follows.Unfollow(ctx, follower, target.MailNickname)
	if err != nil {
		return fmt.Errorf("ошибка отписки: %w", err)
	}
	if !removed {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *FollowService) Followers(ctx context.Context, login string) ([]models.Employee, error) {
	return s.follows.GetFollowers(ctx, login)
}

func (s *FollowService) Following(ctx context.Context, login string) ([]string, error) {
	return s.follows.GetFollowing(ctx, login)
}

func (s *FollowService) resolve(ctx context.Context, login string) (*models.Employee, error) {
	employee, err := s.employees.GetByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сотрудника: %w", err)
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}
