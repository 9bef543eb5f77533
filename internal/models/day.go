package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DayLayout формат хранения календарной даты
const DayLayout = "2006-01-02"

// Day календарный день без времени и часового пояса
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDay нормализует дату (32 января превращается в 1 февраля)
func NewDay(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DayOf отбрасывает время суток
func DayOf(t time.Time) Day {
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDay разбирает дату в формате YYYY-MM-DD
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DayOf(t), nil
}

// MustParseDay как ParseDay, но паникует при ошибке
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Day) String() string {
	return d.Time().Format(DayLayout)
}

// Format форматирует дату для пользователя (02.01.2006)
func (d Day) Format() string {
	return d.Time().Format("02.01.2006")
}

func (d Day) IsZero() bool {
	return d == Day{}
}

func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }
func (d Day) After(o Day) bool  { return d.Compare(o) > 0 }

// Between проверяет d ∈ [from, to] включительно
func (d Day) Between(from, to Day) bool {
	return !d.Before(from) && !d.After(to)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Value сохраняет дату строкой, чтобы сравнение в SQL было лексикографическим
func (d Day) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Day) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return d.parseStored(v)
	case []byte:
		return d.parseStored(string(v))
	case time.Time:
		*d = DayOf(v)
		return nil
	case nil:
		*d = Day{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Day", src)
	}
}

func (d *Day) parseStored(s string) error {
	if len(s) > len(DayLayout) {
		s = s[:len(DayLayout)]
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Month календарный месяц
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf месяц, содержащий день
func MonthOf(d Day) Month {
	return Month{Year: d.Year, Month: d.Month}
}

func (m Month) First() Day {
	return Day{Year: m.Year, Month: m.Month, Day: 1}
}

func (m Month) Last() Day {
	return m.First().AddDays(m.DaysCount() - 1)
}

func (m Month) DaysCount() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Days все дни месяца по возрастанию
func (m Month) Days() []Day {
	n := m.DaysCount()
	days := make([]Day, n)
	for i := 0; i < n; i++ {
		days[i] = Day{Year: m.Year, Month: m.Month, Day: i + 1}
	}
	return days
}

func (m Month) Prev() Month { return MonthOf(m.First().AddDays(-1)) }
func (m Month) Next() Month { return MonthOf(m.Last().AddDays(1)) }

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
