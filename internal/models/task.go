package models

import (
	"fmt"
	"time"
)

// TaskType статус присутствия
type TaskType string

const (
	TaskTypeNone     TaskType = "" // нет записи на день
	TaskTypeCommon   TaskType = "COMMON"
	TaskTypeCustom   TaskType = "CUSTOM"
	TaskTypeLeft     TaskType = "LEFT" // отсутствие
	TaskTypeVacation TaskType = "VACATION"
	TaskTypeSick     TaskType = "SICK"
)

var taskTypeNames = map[TaskType]string{
	TaskTypeCommon:   "Стандартно",
	TaskTypeCustom:   "Особое",
	TaskTypeLeft:     "Отсутствие",
	TaskTypeVacation: "Отпуск",
	TaskTypeSick:     "Болезнь",
}

// Name человекочитаемое название статуса
func (t TaskType) Name() string {
	if name, ok := taskTypeNames[t]; ok {
		return name
	}
	return "Статус не определен"
}

func (t TaskType) IsValid() bool {
	_, ok := taskTypeNames[t]
	return ok
}

// TaskTypes все известные статусы
func TaskTypes() []TaskType {
	return []TaskType{TaskTypeCommon, TaskTypeCustom, TaskTypeLeft, TaskTypeVacation, TaskTypeSick}
}

// Attachment документ-основание (например, заявление на отпуск)
type Attachment struct {
	FileName     string `gorm:"column:attachment_file_name" json:"fileName"`
	OriginalName string `gorm:"column:attachment_original_name" json:"originalName"`
}

// Task интервал присутствия сотрудника. Интервалы одного сотрудника могут
// пересекаться, на каждый день действует созданный последним.
type Task struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	Employee        string     `gorm:"not null;index" json:"employee"`
	EmployeeCreated string     `gorm:"index" json:"employeeCreated"`
	Type            TaskType   `gorm:"type:varchar(20)" json:"type"`
	DateStart       Day        `gorm:"type:varchar(10);not null;index" json:"dateStart"`
	DateEnd         *Day       `gorm:"type:varchar(10);index" json:"dateEnd,omitempty"`
	Comment         string     `json:"comment,omitempty"`
	Attachment      Attachment `gorm:"embedded" json:"attachment"`
	Approved        bool       `gorm:"not null;default:false" json:"approved"`
	CreatedAt       time.Time  `json:"dtCreated"`
	UpdatedAt       time.Time  `json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// HasAttachment проверяет, приложен ли документ-основание
func (t *Task) HasAttachment() bool {
	return t.Attachment.FileName != ""
}

// IsPlaceholder проверяет, что запись синтетическая (на день ничего нет)
func (t *Task) IsPlaceholder() bool {
	return t.ID == 0 && t.Type == TaskTypeNone
}

// IsMalformed дата окончания раньше даты начала
func (t *Task) IsMalformed() bool {
	return t.DateEnd != nil && t.DateEnd.Before(t.DateStart)
}

// Covers проверяет, действует ли интервал в указанный день. Интервал без даты
// окончания действует только в день начала, испорченный интервал тоже.
func (t *Task) Covers(day Day) bool {
	if t.DateEnd == nil || t.IsMalformed() {
		return day == t.DateStart
	}
	return day.Between(t.DateStart, *t.DateEnd)
}

// Validate проверяет интервал перед записью
func (t *Task) Validate() error {
	if t.Employee == "" {
		return fmt.Errorf("не указан сотрудник")
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("неизвестный статус: %q", t.Type)
	}
	if t.DateStart.IsZero() {
		return fmt.Errorf("не указана дата начала")
	}
	if t.IsMalformed() {
		return fmt.Errorf("дата окончания не может быть раньше даты начала")
	}
	return nil
}

// Summary краткое описание интервала для уведомлений
func (t *Task) Summary() TaskSummary {
	return TaskSummary{
		TaskID:    t.ID,
		Type:      t.Type,
		DateStart: t.DateStart,
		DateEnd:   t.DateEnd,
		Comment:   t.Comment,
	}
}

// TaskSummary то, что уходит в уведомление о смене присутствия
type TaskSummary struct {
	TaskID    uint
	Type      TaskType
	DateStart Day
	DateEnd   *Day
	Comment   string
}

// Period период в формате "05.03.2024" или "c 05.03.2024 по 10.03.2024"
func (s TaskSummary) Period() string {
	if s.DateEnd == nil {
		return s.DateStart.Format()
	}
	return fmt.Sprintf("c %s по %s", s.DateStart.Format(), s.DateEnd.Format())
}
