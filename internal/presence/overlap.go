// Package presence вычисляет итоговый статус присутствия сотрудников по дням
// месяца из пересекающихся интервалов.
package presence

import "presence-calendar/internal/models"

// Window закрытый диапазон дат [Start, End]
type Window struct {
	Start models.Day
	End   models.Day
}

// MonthWindow окно от первого до последнего дня месяца
func MonthWindow(m models.Month) Window {
	return Window{Start: m.First(), End: m.Last()}
}

// Contains проверяет d ∈ [Start, End]
func (w Window) Contains(d models.Day) bool {
	return d.Between(w.Start, w.End)
}

// Overlaps проверяет, может ли интервал пересекаться с окном:
// начало внутри окна, конец внутри окна, либо интервал целиком накрывает окно.
// Интервал без даты окончания и испорченный интервал (конец раньше начала)
// попадают в окно только датой начала.
func Overlaps(t *models.Task, w Window) bool {
	if w.Contains(t.DateStart) {
		return true
	}
	if t.DateEnd == nil || t.IsMalformed() {
		return false
	}
	if w.Contains(*t.DateEnd) {
		return true
	}
	return !t.DateStart.After(w.Start) && !t.DateEnd.Before(w.End)
}

// SelectOverlapping оставляет интервалы, пересекающиеся с окном.
// Порядок входа сохраняется.
func SelectOverlapping(tasks []models.Task, w Window) []models.Task {
	result := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		if Overlaps(&tasks[i], w) {
			result = append(result, tasks[i])
		}
	}
	return result
}
