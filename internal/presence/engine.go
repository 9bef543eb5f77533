package presence

import (
	"context"
	"runtime"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"presence-calendar/internal/models"
)

// IntervalSource отдает интервалы, которые могут пересекаться с окном.
// Допускается выбрать лишнее: движок все равно фильтрует по дням.
type IntervalSource interface {
	FetchIntervalsOverlapping(ctx context.Context, employees []string, start, end models.Day) ([]models.Task, error)
}

// EmployeePresence записи сотрудника по всем дням месяца по возрастанию
type EmployeePresence struct {
	Employee models.Employee `json:"employee"`
	Tasks    []DayRecord     `json:"tasks"`
}

// MonthPresence итоговый календарь присутствия за месяц.
// Порядок сотрудников совпадает с порядком входного списка.
type MonthPresence struct {
	Month     models.Month       `json:"-"`
	Days      []models.Day       `json:"days"`
	Employees []EmployeePresence `json:"employees"`
	Warnings  []IntegrityWarning `json:"warnings,omitempty"`
}

// Get записи сотрудника по логину
func (p *MonthPresence) Get(login string) (EmployeePresence, bool) {
	for _, ep := range p.Employees {
		if ep.Employee.MailNickname == login {
			return ep, true
		}
	}
	return EmployeePresence{}, false
}

type Engine struct {
	source  IntervalSource
	workers int
	logger  *logrus.Logger
}

type Option func(*Engine)

// WithWorkers ограничивает число сотрудников, обрабатываемых параллельно
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(source IntervalSource, opts ...Option) *Engine {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	e := &Engine{
		source:  source,
		workers: runtime.GOMAXPROCS(0),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ResolveMonth строит календарь присутствия за месяц по переданному составу.
// Интервалы запрашиваются одним вызовом на весь состав. Ошибка источника
// возвращается как *RetrievalError без частичного результата.
func (e *Engine) ResolveMonth(ctx context.Context, month models.Month, roster []models.Employee) (*MonthPresence, error) {
	window := MonthWindow(month)
	days := month.Days()

	active := ActiveRoster(roster, month)
	result := &MonthPresence{
		Month:     month,
		Days:      days,
		Employees: make([]EmployeePresence, len(active)),
	}
	if len(active) == 0 {
		return result, nil
	}

	logins := make([]string, len(active))
	for i := range active {
		logins[i] = active[i].MailNickname
	}

	tasks, err := e.source.FetchIntervalsOverlapping(ctx, logins, window.Start, window.End)
	if err != nil {
		e.logger.WithError(err).WithField("month", month.String()).Error("Failed to fetch intervals")
		return nil, &RetrievalError{Op: "fetch intervals", Err: err}
	}

	candidates := groupByEmployee(SelectOverlapping(tasks, window))
	result.Warnings = e.collectWarnings(active, candidates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range active {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			employee := active[i]
			own := candidates[employee.MailNickname]
			records := make([]DayRecord, len(days))
			for j, day := range days {
				records[j] = ResolveDay(employee.MailNickname, day, own)
			}
			result.Employees[i] = EmployeePresence{Employee: employee, Tasks: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"month":     month.String(),
		"employees": len(active),
		"intervals": len(tasks),
		"warnings":  len(result.Warnings),
	}).Debug("Month presence resolved")

	return result, nil
}

// ActiveRoster отбрасывает сотрудников, уволенных до начала месяца.
// Уволенные в течение месяца остаются.
func ActiveRoster(roster []models.Employee, month models.Month) []models.Employee {
	active := make([]models.Employee, 0, len(roster))
	for i := range roster {
		if roster[i].ActiveIn(month) {
			active = append(active, roster[i])
		}
	}
	return active
}

func groupByEmployee(tasks []models.Task) map[string][]models.Task {
	grouped := make(map[string][]models.Task)
	for _, t := range tasks {
		grouped[t.Employee] = append(grouped[t.Employee], t)
	}
	for login := range grouped {
		own := grouped[login]
		sort.Slice(own, func(a, b int) bool { return own[a].ID < own[b].ID })
	}
	return grouped
}

func (e *Engine) collectWarnings(active []models.Employee, candidates map[string][]models.Task) []IntegrityWarning {
	var warnings []IntegrityWarning
	for i := range active {
		own := candidates[active[i].MailNickname]
		for j := range own {
			w, bad := checkIntegrity(&own[j])
			if !bad {
				continue
			}
			e.logger.WithFields(logrus.Fields{
				"task_id":    w.TaskID,
				"employee":   w.Employee,
				"date_start": w.DateStart.String(),
				"date_end":   w.DateEnd.String(),
			}).Warn("Malformed interval, falling back to its start day")
			warnings = append(warnings, w)
		}
	}
	return warnings
}
