package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"presence-calendar/internal/models"
	"presence-calendar/internal/repository"

	"gorm.io/gorm"
)

// setupTestDB открывает чистую SQLite базу во временном каталоге
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repository.OpenDB(repository.DriverSQLite, filepath.Join(t.TempDir(), "calendar.db"), false)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		_ = repository.CloseDB(db)
	})

	return db
}

func seedEmployee(t *testing.T, repo *repository.GormEmployeeRepository, login, name string) *models.Employee {
	t.Helper()
	e := &models.Employee{Username: name, MailNickname: login, Email: login + "@example.com"}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("failed to seed employee %s: %v", login, err)
	}
	return e
}

func seedTask(t *testing.T, repo *repository.GormTaskRepository, employee, start, end string) *models.Task {
	t.Helper()
	task := &models.Task{
		Employee:        employee,
		EmployeeCreated: employee,
		Type:            models.TaskTypeVacation,
		DateStart:       models.MustParseDay(start),
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if end != "" {
		d := models.MustParseDay(end)
		task.DateEnd = &d
	}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return task
}
