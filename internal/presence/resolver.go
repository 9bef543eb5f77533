package presence

import "presence-calendar/internal/models"

// DayRecord итоговая запись сотрудника на день
type DayRecord struct {
	Employee string      `json:"employee"`
	Day      models.Day  `json:"day"`
	Task     models.Task `json:"task"`
}

// IsEmpty на день нет ни одного интервала
func (r DayRecord) IsEmpty() bool {
	return r.Task.IsPlaceholder()
}

// Placeholder синтетическая запись "нет данных" на день
func Placeholder(employee string, day models.Day) models.Task {
	return models.Task{
		Employee:  employee,
		Type:      models.TaskTypeNone,
		DateStart: day,
	}
}

// ResolveDay выбирает единственный действующий интервал сотрудника на день.
// Из интервалов, покрывающих день, побеждает созданный последним; при равном
// времени создания побеждает больший ID, так что порядок входа не важен.
func ResolveDay(employee string, day models.Day, candidates []models.Task) DayRecord {
	var winner *models.Task
	for i := range candidates {
		c := &candidates[i]
		if !c.Covers(day) {
			continue
		}
		if winner == nil || newer(c, winner) {
			winner = c
		}
	}

	if winner == nil {
		return DayRecord{Employee: employee, Day: day, Task: Placeholder(employee, day)}
	}
	return DayRecord{Employee: employee, Day: day, Task: *winner}
}

func newer(a, b *models.Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
