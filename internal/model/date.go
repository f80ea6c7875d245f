package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component, serialized as
// "YYYY-MM-DD" the way the backend emits bloque.fecha.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d Date) Equal(other Date) bool {
	return d.Year() == other.Year() && d.YearDay() == other.YearDay()
}

func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// HourOfDay is an hour on the local 24h clock, serialized by the backend
// as "HH:MM:SS" (bloque.hora_inicio / hora_fin). Minutes are always zero
// in practice, blocks are aligned to the hour.
type HourOfDay int

func (h *HourOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*h = 0
		return nil
	}
	head, _, _ := strings.Cut(s, ":")
	n, err := strconv.Atoi(head)
	if err != nil || n < 0 || n > 23 {
		return fmt.Errorf("parse hour %q", s)
	}
	*h = HourOfDay(n)
	return nil
}

func (h HourOfDay) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%02d:00:00"`, int(h))), nil
}

func (h HourOfDay) String() string {
	return fmt.Sprintf("%02d:00", int(h))
}
