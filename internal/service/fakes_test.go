package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"presence-calendar/internal/models"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type mockEmployeeRepository struct {
	employees []models.Employee
	err       error
}

func newMockEmployeeRepository(logins ...string) *mockEmployeeRepository {
	r := &mockEmployeeRepository{}
	for i, login := range logins {
		r.employees = append(r.employees, models.Employee{
			ID:           uint(i + 1),
			Username:     strings.ToUpper(login[:1]) + login[1:],
			MailNickname: login,
			Email:        login + "@example.com",
		})
	}
	return r
}

func (r *mockEmployeeRepository) Create(_ context.Context, e *models.Employee) error {
	e.ID = uint(len(r.employees) + 1)
	r.employees = append(r.employees, *e)
	return nil
}

func (r *mockEmployeeRepository) GetByID(_ context.Context, id uint) (*models.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (r *mockEmployeeRepository) GetByLogin(_ context.Context, login string) (*models.Employee, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, e := range r.employees {
		if strings.EqualFold(e.MailNickname, login) {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (r *mockEmployeeRepository) GetByChatID(_ context.Context, chatID int64) (*models.Employee, error) {
	for _, e := range r.employees {
		if e.ChatID == chatID {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (r *mockEmployeeRepository) GetRoster(_ context.Context) ([]models.Employee, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := append([]models.Employee(nil), r.employees...)
	return out, nil
}

func (r *mockEmployeeRepository) UpdateChatID(_ context.Context, login string, chatID int64) error {
	for i := range r.employees {
		if strings.EqualFold(r.employees[i].MailNickname, login) {
			r.employees[i].ChatID = chatID
			return nil
		}
	}
	return errors.New("сотрудник не найден")
}

type mockTaskRepository struct {
	mu        sync.Mutex
	tasks     map[uint]models.Task
	nextID    uint
	updateErr error
	fetchErr  error
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{tasks: map[uint]models.Task{}}
}

func (r *mockTaskRepository) Create(_ context.Context, t *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.tasks[t.ID] = *t
	return nil
}

func (r *mockTaskRepository) GetByID(_ context.Context, id uint) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *mockTaskRepository) filter(keep func(models.Task) bool) []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Task
	for _, t := range r.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *mockTaskRepository) GetByEmployee(_ context.Context, login string) ([]models.Task, error) {
	return r.filter(func(t models.Task) bool { return t.Employee == login }), nil
}

func (r *mockTaskRepository) GetByAuthor(_ context.Context, login string) ([]models.Task, error) {
	return r.filter(func(t models.Task) bool { return t.EmployeeCreated == login }), nil
}

func (r *mockTaskRepository) Update(_ context.Context, t *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	existing, ok := r.tasks[t.ID]
	if !ok {
		return errors.New("record not found")
	}
	updated := *t
	updated.CreatedAt = existing.CreatedAt
	r.tasks[t.ID] = updated
	return nil
}

func (r *mockTaskRepository) Delete(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func (r *mockTaskRepository) FetchIntervalsOverlapping(ctx context.Context, employees []string, start, end models.Day) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	wanted := map[string]bool{}
	for _, e := range employees {
		wanted[e] = true
	}
	return r.filter(func(t models.Task) bool { return len(wanted) == 0 || wanted[t.Employee] }), nil
}

type notification struct {
	subject, creator string
	summary          models.TaskSummary
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *mockNotifier) Notify(_ context.Context, subject, creator models.Employee, summary models.TaskSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{subject: subject.MailNickname, creator: creator.MailNickname, summary: summary})
}

type mockFileStorage struct {
	files   map[string]string
	saveErr error
}

func newMockFileStorage() *mockFileStorage {
	return &mockFileStorage{files: map[string]string{}}
}

func (s *mockFileStorage) Save(_ context.Context, name string, r io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.files[name] = string(data)
	return nil
}

func (s *mockFileStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func (s *mockFileStorage) Delete(_ context.Context, name string) error {
	delete(s.files, name)
	return nil
}

type mockFollowRepository struct {
	pairs map[[2]string]bool
}

func newMockFollowRepository() *mockFollowRepository {
	return &mockFollowRepository{pairs: map[[2]string]bool{}}
}

func (r *mockFollowRepository) Follow(_ context.Context, follower, following string) error {
	r.pairs[[2]string{follower, following}] = true
	return nil
}

func (r *mockFollowRepository) Unfollow(_ context.Context, follower, following string) (bool, error) {
	key := [2]string{follower, following}
	if !r.pairs[key] {
		return false, nil
	}
	delete(r.pairs, key)
	return true, nil
}

func (r *mockFollowRepository) GetFollowers(_ context.Context, login string) ([]models.Employee, error) {
	var out []models.Employee
	for pair := range r.pairs {
		if pair[1] == login {
			out = append(out, models.Employee{MailNickname: pair[0]})
		}
	}
	return out, nil
}

func (r *mockFollowRepository) GetFollowing(_ context.Context, login string) ([]string, error) {
	var out []string
	for pair := range r.pairs {
		if pair[0] == login {
			out = append(out, pair[1])
		}
	}
	sort.Strings(out)
	return out, nil
}

type mockNonWorkingDayRepository struct {
	days []models.NonWorkingDay
	err  error
}

func (r *mockNonWorkingDayRepository) GetByYearMonth(_ context.Context, year, month int) ([]models.NonWorkingDay, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.NonWorkingDay
	for _, d := range r.days {
		if d.Year == year && d.Month == month {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *mockNonWorkingDayRepository) GetByYear(_ context.Context, year int) ([]models.NonWorkingDay, error) {
	var out []models.NonWorkingDay
	for _, d := range r.days {
		if d.Year == year {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *mockNonWorkingDayRepository) ReplaceYear(_ context.Context, year int, days []models.NonWorkingDay) error {
	if r.err != nil {
		return r.err
	}
	kept := r.days[:0]
	for _, d := range r.days {
		if d.Year != year {
			kept = append(kept, d)
		}
	}
	r.days = append(kept, days...)
	return nil
}

func (r *mockNonWorkingDayRepository) IsNonWorkingDay(_ context.Context, date models.Day) (bool, error) {
	for _, d := range r.days {
		if d.Date == date {
			return true, nil
		}
	}
	return false, nil
}
