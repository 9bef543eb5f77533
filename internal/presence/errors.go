package presence

import (
	"fmt"

	"presence-calendar/internal/models"
)

// RetrievalError источник интервалов или состав сотрудников недоступен.
// Частичный результат в этом случае не возвращается.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("presence: %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// IntegrityWarning испорченный интервал, обработанный с откатом на один день
type IntegrityWarning struct {
	TaskID    uint       `json:"taskId"`
	Employee  string     `json:"employee"`
	DateStart models.Day `json:"dateStart"`
	DateEnd   models.Day `json:"dateEnd"`
	Reason    string     `json:"reason"`
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("task %d (%s): %s", w.TaskID, w.Employee, w.Reason)
}

func checkIntegrity(t *models.Task) (IntegrityWarning, bool) {
	if !t.IsMalformed() {
		return IntegrityWarning{}, false
	}
	return IntegrityWarning{
		TaskID:    t.ID,
		Employee:  t.Employee,
		DateStart: t.DateStart,
		DateEnd:   *t.DateEnd,
		Reason:    "date end is before date start, only the start day is used",
	}, true
}
