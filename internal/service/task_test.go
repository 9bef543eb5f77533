package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"presence-calendar/internal/models"
)

func newTestTaskService() (*TaskService, *mockTaskRepository, *mockNotifier) {
	tasks := newMockTaskRepository()
	notifier := &mockNotifier{}
	s := NewTaskService(tasks, newMockEmployeeRepository("ivanov", "petrov", "sidorov"), notifier)
	s.SetLogger(quietLogger())
	s.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return s, tasks, notifier
}

func vacation(employee, start, end string) models.Task {
	t := models.Task{Employee: employee, Type: models.TaskTypeVacation, DateStart: models.MustParseDay(start)}
	if end != "" {
		d := models.MustParseDay(end)
		t.DateEnd = &d
	}
	return t
}

func TestTaskService_CreateNotifiesAfterWrite(t *testing.T) {
	s, tasks, notifier := newTestTaskService()

	input := vacation("IVANOV", "2024-03-05", "2024-03-10")
	input.Approved = true
	input.ID = 99

	task, err := s.Create(context.Background(), "sidorov", input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if task.ID != 1 {
		t.Errorf("client-supplied ID must be ignored, got %d", task.ID)
	}
	if task.Employee != "ivanov" || task.EmployeeCreated != "sidorov" {
		t.Errorf("unexpected logins: %s / %s", task.Employee, task.EmployeeCreated)
	}
	if task.Approved {
		t.Error("new task must not be approved")
	}
	if stored, _ := tasks.GetByID(context.Background(), task.ID); stored == nil {
		t.Fatal("task was not stored")
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.subject != "ivanov" || n.creator != "sidorov" || n.summary.TaskID != task.ID {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestTaskService_CreateRejectsInvalid(t *testing.T) {
	s, tasks, notifier := newTestTaskService()

	bad := vacation("ivanov", "2024-03-10", "2024-03-05")
	if _, err := s.Create(context.Background(), "ivanov", bad); !errors.Is(err, ErrInvalidTask) {
		t.Errorf("expected ErrInvalidTask, got %v", err)
	}

	unknown := vacation("nobody", "2024-03-10", "")
	if _, err := s.Create(context.Background(), "ivanov", unknown); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}

	if len(tasks.tasks) != 0 || len(notifier.sent) != 0 {
		t.Error("nothing must be stored or sent for rejected input")
	}
}

func TestTaskService_UpdateDoesNotNotify(t *testing.T) {
	s, _, notifier := newTestTaskService()
	ctx := context.Background()

	task, err := s.Create(ctx, "ivanov", vacation("ivanov", "2024-03-05", ""))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sick := models.TaskTypeSick
	end := models.MustParseDay("2024-03-07")
	comment := "ОРВИ"
	updated, err := s.Update(ctx, task.ID, TaskPatch{Type: &sick, DateEnd: &end, Comment: &comment})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Type != models.TaskTypeSick || updated.DateEnd == nil || *updated.DateEnd != end || updated.Comment != "ОРВИ" {
		t.Errorf("patch not applied: %+v", updated)
	}
	if !updated.CreatedAt.Equal(task.CreatedAt) {
		t.Error("creation time must not change on update")
	}

	cleared, err := s.Update(ctx, task.ID, TaskPatch{ClearEnd: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if cleared.DateEnd != nil {
		t.Error("expected end date to be cleared")
	}

	if len(notifier.sent) != 1 {
		t.Errorf("updates must not re-send notifications, got %d", len(notifier.sent))
	}
}

func TestTaskService_UpdateValidation(t *testing.T) {
	s, _, _ := newTestTaskService()
	ctx := context.Background()

	task, _ := s.Create(ctx, "ivanov", vacation("ivanov", "2024-03-05", "2024-03-10"))

	start := models.MustParseDay("2024-03-20")
	if _, err := s.Update(ctx, task.ID, TaskPatch{DateStart: &start}); !errors.Is(err, ErrInvalidTask) {
		t.Errorf("expected ErrInvalidTask, got %v", err)
	}
	if _, err := s.Update(ctx, 404, TaskPatch{}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_ListsAndDelete(t *testing.T) {
	s, _, _ := newTestTaskService()
	ctx := context.Background()

	own, _ := s.Create(ctx, "ivanov", vacation("ivanov", "2024-03-05", ""))
	_, _ = s.Create(ctx, "sidorov", vacation("ivanov", "2024-03-06", ""))
	_, _ = s.Create(ctx, "sidorov", vacation("petrov", "2024-03-06", ""))

	forIvanov, _ := s.ListByEmployee(ctx, "ivanov")
	if len(forIvanov) != 2 {
		t.Errorf("expected 2 tasks for ivanov, got %d", len(forIvanov))
	}
	bySidorov, _ := s.ListByAuthor(ctx, "sidorov")
	if len(bySidorov) != 2 {
		t.Errorf("expected 2 tasks by sidorov, got %d", len(bySidorov))
	}

	if err := s.Delete(ctx, own.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, own.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound on second delete, got %v", err)
	}
	if _, err := s.Get(ctx, own.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}
