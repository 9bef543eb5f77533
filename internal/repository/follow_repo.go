package repository

import (
	"context"

	"presence-calendar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	Follow(ctx context.Context, follower, following string) error
	Unfollow(ctx context.Context, follower, following string) (bool, error)
	GetFollowers(ctx context.Context, login string) ([]models.Employee, error)
	GetFollowing(ctx context.Context, login string) ([]string, error)
}

type GormFollowRepository struct {
	db *gorm.DB
}

func NewGormFollowRepository(db *gorm.DB) (*GormFollowRepository, error) {
	if err := db.AutoMigrate(&models.Follow{}); err != nil {
		return nil, err
	}
	return &GormFollowRepository{db: db}, nil
}

// Follow идемпотентна: повторная подписка ничего не меняет
func (r *GormFollowRepository) Follow(ctx context.Context, follower, following string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{Follower: follower, Following: following}).Error
}

func (r *GormFollowRepository) Unfollow(ctx context.Context, follower, following string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower = ? AND followee = ?", follower, following).
		Delete(&models.Follow{})
	return result.RowsAffected > 0, result.Error
}

// GetFollowers возвращает подписчиков сотрудника вместе с их контактами
func (r *GormFollowRepository) GetFollowers(ctx context.Context, login string) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower = employees.mail_nickname").
		Where("follows.followee = ?", login).
		Order("employees.username ASC").
		Find(&employees).Error
	return employees, err
}

func (r *GormFollowRepository) GetFollowing(ctx context.Context, login string) ([]string, error) {
	var logins []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower = ?", login).
		Order("followee ASC").
		Pluck("followee", &logins).Error
	return logins, err
}
