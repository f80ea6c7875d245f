package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autoescuela/reservas-bot/internal/model"
)

func TestWeekDatesResolvesMondayFromMidweek(t *testing.T) {
	// Wednesday 2024-03-06 belongs to the week 03-04 .. 03-10.
	ref := time.Date(2024, time.March, 6, 15, 30, 0, 0, time.Local)

	week := WeekDates(ref, 0)

	assert.True(t, week[0].Equal(model.NewDate(2024, time.March, 4)))
	assert.True(t, week[6].Equal(model.NewDate(2024, time.March, 10)))
	for i := 1; i < 7; i++ {
		assert.True(t, week[i].Equal(model.DateOf(week[i-1].AddDate(0, 0, 1))),
			"days must be consecutive")
	}
}

func TestWeekDatesEveryWeekdaySameWeek(t *testing.T) {
	// All seven days of 2024-03-04 .. 03-10 must resolve to the same Monday.
	for day := 4; day <= 10; day++ {
		ref := time.Date(2024, time.March, day, 9, 0, 0, 0, time.Local)
		week := WeekDates(ref, 0)
		assert.True(t, week[0].Equal(model.NewDate(2024, time.March, 4)),
			"reference day %d", day)
	}
}

func TestWeekDatesOffsets(t *testing.T) {
	ref := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.Local)

	tests := []struct {
		offset int
		monday model.Date
	}{
		{-2, model.NewDate(2024, time.February, 19)},
		{-1, model.NewDate(2024, time.February, 26)},
		{0, model.NewDate(2024, time.March, 4)},
		{1, model.NewDate(2024, time.March, 11)},
		{2, model.NewDate(2024, time.March, 18)},
	}
	for _, tt := range tests {
		week := WeekDates(ref, tt.offset)
		assert.True(t, week[0].Equal(tt.monday), "offset %d", tt.offset)
	}
}

func TestWeekDatesCrossesMonthAndYear(t *testing.T) {
	// Wednesday 2025-01-01: its week starts Monday 2024-12-30.
	ref := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local)
	week := WeekDates(ref, 0)
	assert.True(t, week[0].Equal(model.NewDate(2024, time.December, 30)))
	assert.True(t, week[6].Equal(model.NewDate(2025, time.January, 5)))
}

func TestHoursForWeekdays(t *testing.T) {
	for weekday := 0; weekday < 6; weekday++ {
		hours := HoursFor(weekday)
		assert.Len(t, hours, 11, "weekday %d", weekday)
		assert.Equal(t, 7, hours[0])
		assert.Equal(t, 17, hours[len(hours)-1])
	}
}

func TestHoursForSundayTruncated(t *testing.T) {
	hours := HoursFor(6)
	assert.Equal(t, []int{7, 8, 9, 10, 11}, hours)
}
