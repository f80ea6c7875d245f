package formatting

import (
	"fmt"
	"time"

	"github.com/autoescuela/reservas-bot/internal/model"
)

var dayNamesShort = [7]string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}

var dayNamesLong = [7]string{
	"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo",
}

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// DayShort returns the Spanish abbreviation for a 0-based weekday
// (0 = Monday).
func DayShort(weekday int) string {
	return dayNamesShort[weekday]
}

// DayLong returns the full Spanish weekday name (0 = Monday).
func DayLong(weekday int) string {
	return dayNamesLong[weekday]
}

// MonthName returns the Spanish month name.
func MonthName(m time.Month) string {
	return monthNames[int(m)-1]
}

// FormatDate renders "Lun 04/03".
func FormatDate(weekday int, d model.Date) string {
	return fmt.Sprintf("%s %02d/%02d", dayNamesShort[weekday], d.Day(), int(d.Month()))
}

// FormatDateLong renders "Lunes 4 de Marzo".
func FormatDateLong(d model.Date) string {
	weekday := int(d.Weekday()) - 1
	if d.Weekday() == time.Sunday {
		weekday = 6
	}
	return fmt.Sprintf("%s %d de %s", dayNamesLong[weekday], d.Day(), MonthName(d.Month()))
}

// FormatHour renders an hour-of-day as "07:00".
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
