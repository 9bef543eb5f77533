package weekends

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON - структура производственного календаря (формат xmlcalendar.ru)
type CalendarJSON struct {
	Year        int             `json:"year"`
	Months      []MonthWeekends `json:"months"`
	Transitions []Transition    `json:"transitions"`
	Statistic   Statistic       `json:"statistic"`
}

type MonthWeekends struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Statistic struct {
	Workdays int     `json:"workdays"`
	Holidays int     `json:"holidays"`
	Hours40  float64 `json:"hours40"`
	Hours36  float64 `json:"hours36"`
	Hours24  float64 `json:"hours24"`
}

// Kind вид нерабочего дня
type Kind string

const (
	KindWeekend   Kind = "weekend"
	KindHoliday   Kind = "holiday"   // суффикс "+"
	KindShortened Kind = "shortened" // суффикс "*", предпраздничный рабочий день
)

// NonWorkingDay - выходной день календаря
type NonWorkingDay struct {
	Year  int  `json:"year"`
	Month int  `json:"month"`
	Day   int  `json:"day"`
	Kind  Kind `json:"kind"`
}

// Calendar - разобранный календарь одного года
type Calendar struct {
	Year      int
	Days      []NonWorkingDay
	Statistic Statistic
}

// ParseFile - читает и парсит JSON календаря
func ParseFile(filePath string) (*Calendar, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse - парсит JSON и возвращает выходные дни года по возрастанию.
// Сокращенные дни ("*") рабочие и в результат не попадают.
func Parse(r io.Reader) (*Calendar, error) {
	var raw CalendarJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if raw.Year == 0 {
		return nil, fmt.Errorf("calendar year is missing")
	}

	cal := &Calendar{Year: raw.Year, Statistic: raw.Statistic}

	for _, monthData := range raw.Months {
		if monthData.Month < 1 || monthData.Month > 12 {
			return nil, fmt.Errorf("invalid month %d", monthData.Month)
		}

		for _, dayStr := range strings.Split(monthData.Days, ",") {
			dayStr = strings.TrimSpace(dayStr)
			if dayStr == "" {
				continue
			}

			kind := KindWeekend
			switch {
			case strings.HasSuffix(dayStr, "+"):
				kind = KindHoliday
			case strings.HasSuffix(dayStr, "*"):
				kind = KindShortened
			}
			dayStr = strings.TrimRight(dayStr, "+*")

			day, err := strconv.Atoi(dayStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w",
					dayStr, monthData.Month, err)
			}
			if day < 1 || day > daysIn(raw.Year, monthData.Month) {
				return nil, fmt.Errorf("day %d out of range in month %d", day, monthData.Month)
			}
			if kind == KindShortened {
				continue
			}

			cal.Days = append(cal.Days, NonWorkingDay{
				Year:  raw.Year,
				Month: monthData.Month,
				Day:   day,
				Kind:  kind,
			})
		}
	}

	sort.Slice(cal.Days, func(i, j int) bool {
		a, b := cal.Days[i], cal.Days[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Day < b.Day
	})

	return cal, nil
}

// ForMonth - выходные дни указанного месяца
func (c *Calendar) ForMonth(month int) []NonWorkingDay {
	result := []NonWorkingDay{}
	for _, day := range c.Days {
		if day.Month == month {
			result = append(result, day)
		}
	}
	return result
}

// Summary - краткая статистика по году
func (c *Calendar) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Год: %d\n", c.Year)
	fmt.Fprintf(&b, "Всего выходных дней: %d\n", len(c.Days))
	fmt.Fprintf(&b, "Рабочих дней: %d\n", c.Statistic.Workdays)
	fmt.Fprintf(&b, "Часов при 40-часовой неделе: %.1f\n", c.Statistic.Hours40)
	return b.String()
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
