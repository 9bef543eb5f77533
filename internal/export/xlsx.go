package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"presence-calendar/internal/models"
	"presence-calendar/internal/presence"
)

var shortNames = map[models.TaskType]string{
	models.TaskTypeCommon:   "С",
	models.TaskTypeCustom:   "О",
	models.TaskTypeLeft:     "Н",
	models.TaskTypeVacation: "ОТ",
	models.TaskTypeSick:     "Б",
}

var fillColors = map[models.TaskType]string{
	models.TaskTypeCommon:   "#C6EFCE",
	models.TaskTypeCustom:   "#FFEB9C",
	models.TaskTypeLeft:     "#F4B084",
	models.TaskTypeVacation: "#9BC2E6",
	models.TaskTypeSick:     "#FFC7CE",
}

const holidayColor = "#D9D9D9"

// ShortName сокращение статуса для ячейки таблицы
func ShortName(t models.TaskType) string {
	return shortNames[t]
}

// MonthExporter выгружает календарь присутствия в Excel
type MonthExporter struct{}

func NewMonthExporter() *MonthExporter {
	return &MonthExporter{}
}

// SheetName имя листа для месяца
func SheetName(m models.Month) string {
	return fmt.Sprintf("%02d.%04d", int(m.Month), m.Year)
}

// Export строит книгу: строка на сотрудника, столбец на день месяца.
// Выходные дни затеняются, статусы раскрашиваются.
func (e *MonthExporter) Export(p *presence.MonthPresence, holidays []models.Day) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := SheetName(p.Month)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	holidayStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{holidayColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	statusStyles := make(map[models.TaskType]int, len(fillColors))
	for taskType, color := range fillColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return nil, err
		}
		statusStyles[taskType] = style
	}

	isHoliday := make(map[models.Day]bool, len(holidays))
	for _, h := range holidays {
		isHoliday[h] = true
	}

	// Заголовок
	f.SetCellValue(sheet, "A1", "Сотрудник")
	f.SetCellValue(sheet, "B1", "Подразделение")
	for i, day := range p.Days {
		cell, _ := excelize.CoordinatesToCellName(i+3, 1)
		f.SetCellValue(sheet, cell, day.Day)
		if isHoliday[day] {
			f.SetCellStyle(sheet, cell, cell, holidayStyle)
		} else {
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
	}
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)

	for i, ep := range p.Employees {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), ep.Employee.Username)
		if ep.Employee.Subdivision != nil {
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), ep.Employee.Subdivision.Name)
		}

		for j, record := range ep.Tasks {
			cell, _ := excelize.CoordinatesToCellName(j+3, row)
			if record.IsEmpty() {
				if isHoliday[record.Day] {
					f.SetCellStyle(sheet, cell, cell, holidayStyle)
				}
				continue
			}
			f.SetCellValue(sheet, cell, ShortName(record.Task.Type))
			if style, ok := statusStyles[record.Task.Type]; ok {
				f.SetCellStyle(sheet, cell, cell, style)
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(p.Days) + 2)
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 20)
	f.SetColWidth(sheet, "C", lastCol, 4)
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	})

	e.writeLegend(f)

	return f, nil
}

// WriteTo пишет книгу в поток (например, в HTTP ответ)
func (e *MonthExporter) WriteTo(w io.Writer, p *presence.MonthPresence, holidays []models.Day) error {
	f, err := e.Export(p, holidays)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

func (e *MonthExporter) writeLegend(f *excelize.File) {
	legend := "Обозначения"
	f.NewSheet(legend)
	f.SetCellValue(legend, "A1", "Код")
	f.SetCellValue(legend, "B1", "Статус")
	for i, taskType := range models.TaskTypes() {
		row := i + 2
		f.SetCellValue(legend, fmt.Sprintf("A%d", row), ShortName(taskType))
		f.SetCellValue(legend, fmt.Sprintf("B%d", row), taskType.Name())
	}
	f.SetColWidth(legend, "B", "B", 20)
}
