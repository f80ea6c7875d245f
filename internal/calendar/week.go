package calendar

import (
	"time"

	"github.com/autoescuela/reservas-bot/internal/model"
)

// Fixed grid bounds: classes run 07:00 through 17:00 (11 rows), Sundays only
// until noon. Business constants, not configuration.
const (
	FirstHour      = 7
	LastHour       = 17
	SundayLastHour = 11
)

// StudentWeekSpan limits students to one week of navigation either way;
// admins are unbounded.
const StudentWeekSpan = 1

// WeekDates resolves the 7 dates, Monday through Sunday, of the week at
// ref + offset*7 days. A Sunday reference resolves to the preceding Monday.
func WeekDates(ref time.Time, offset int) [7]model.Date {
	base := model.DateOf(ref.AddDate(0, 0, offset*7))

	sinceMonday := int(base.Weekday()) - 1
	if base.Weekday() == time.Sunday {
		sinceMonday = 6
	}
	monday := model.DateOf(base.AddDate(0, 0, -sinceMonday))

	var week [7]model.Date
	for i := range week {
		week[i] = model.DateOf(monday.AddDate(0, 0, i))
	}
	return week
}

// HoursFor returns the bookable hours for the given day of the week.
// weekday 0 is Monday, 6 is Sunday.
func HoursFor(weekday int) []int {
	last := LastHour
	if weekday == 6 {
		last = SundayLastHour
	}
	hours := make([]int, 0, last-FirstHour+1)
	for h := FirstHour; h <= last; h++ {
		hours = append(hours, h)
	}
	return hours
}
