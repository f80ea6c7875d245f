package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/autoescuela/reservas-bot/internal/calendar"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common/formatting"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common/keyboard"
	"github.com/autoescuela/reservas-bot/internal/service"
)

// Callback data patterns for the calendar screen.
const (
	CallbackWeekPrev  = "cal_week:-1"
	CallbackWeekNext  = "cal_week:+1"
	CallbackSlot      = "cal_slot:" // cal_slot:<block id>
	CallbackMode      = "cal_mode:" // cal_mode:<vista|reservar|cancelar>
	CallbackConfirm   = "cal_confirm"
	CallbackWeekImage = "cal_img"
	CallbackExit      = "cal_exit"
	CallbackNoop      = "noop"
)

// CalendarTitle derives the screen title from the session's mode descriptor.
func CalendarTitle(profile service.Profile) string {
	switch {
	case profile.GlobalView:
		return "📅 Calendario general"
	case profile.AdminMode:
		return fmt.Sprintf("📅 Calendario — matrícula #%d", profile.MatriculaID)
	default:
		return "📅 Mi calendario"
	}
}

// CalendarMessage renders the session's current week as message text plus
// the inline keyboard grid.
func CalendarMessage(s *service.CalendarSession, title string) (string, *models.InlineKeyboardMarkup) {
	profile := s.Profile()
	week := s.WeekDates()
	grid := s.Grid()
	mode := s.Mode()

	var text strings.Builder
	text.WriteString(title)
	fmt.Fprintf(&text, "\n📅 Semana del %02d/%02d al %02d/%02d\n",
		week[0].Day(), int(week[0].Month()), week[6].Day(), int(week[6].Month()))

	switch mode {
	case calendar.ModeReserve:
		fmt.Fprintf(&text, "📝 Modo reservar — seleccionadas: %d\n", s.SelectionCount())
		fmt.Fprintf(&text, "⏳ Horas disponibles: %d\n", s.Quota())
	case calendar.ModeCancel:
		fmt.Fprintf(&text, "🗑 Modo cancelar — seleccionadas: %d\n", s.SelectionCount())
	default:
		if !profile.GlobalView {
			fmt.Fprintf(&text, "⏳ Horas disponibles: %d\n", s.Quota())
		}
	}
	text.WriteString("\n🟢 libre  🔵 reservado  🔴 lleno  🟡 seleccionado")

	return text.String(), calendarKeyboard(grid, mode, profile, s)
}

func calendarKeyboard(grid []calendar.Day, mode calendar.Mode, profile service.Profile, s *service.CalendarSession) *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()

	// Day header row.
	header := make([]models.InlineKeyboardButton, 0, 8)
	header = append(header, keyboard.Button("🕐", CallbackNoop))
	for i, day := range grid {
		label := fmt.Sprintf("%s %d", formatting.DayShort(i), day.Date.Day())
		header = append(header, keyboard.Button(label, CallbackNoop))
	}
	kb.AddRow(header)

	// One row per hour, Sunday's afternoon staying blank.
	for hour := calendar.FirstHour; hour <= calendar.LastHour; hour++ {
		row := make([]models.InlineKeyboardButton, 0, 8)
		row = append(row, keyboard.Button(strconv.Itoa(hour), CallbackNoop))
		for _, day := range grid {
			cell, ok := cellAt(day, hour)
			if !ok {
				row = append(row, keyboard.Button(" ", CallbackNoop))
				continue
			}
			data := CallbackNoop
			if cell.Block != nil && mode != calendar.ModeView {
				data = CallbackSlot + strconv.FormatInt(cell.Block.ID, 10)
			}
			row = append(row, keyboard.Button(formatting.CellSymbol(cell), data))
		}
		kb.AddRow(row)
	}

	// Week navigation.
	nav := make([]models.InlineKeyboardButton, 0, 3)
	if s.CanNavigate(-1) {
		nav = append(nav, keyboard.Button("⬅️", CallbackWeekPrev))
	}
	nav = append(nav, keyboard.Button("Semana", CallbackNoop))
	if s.CanNavigate(+1) {
		nav = append(nav, keyboard.Button("➡️", CallbackWeekNext))
	}
	kb.AddRow(nav)

	// Mode controls.
	switch mode {
	case calendar.ModeView:
		if !profile.GlobalView {
			controls := make([]models.InlineKeyboardButton, 0, 2)
			// Students without remaining hours cannot enter reserve mode.
			if profile.AdminMode || s.Quota() > 0 {
				controls = append(controls, keyboard.Button("📝 Reservar", CallbackMode+string(calendar.ModeReserve)))
			}
			controls = append(controls, keyboard.Button("🗑 Cancelar", CallbackMode+string(calendar.ModeCancel)))
			kb.AddRow(controls)
		}
	default:
		controls := make([]models.InlineKeyboardButton, 0, 2)
		if n := s.SelectionCount(); n > 0 {
			controls = append(controls, keyboard.Button(
				fmt.Sprintf("✔️ Confirmar (%d)", n), CallbackConfirm))
		}
		controls = append(controls, keyboard.Button("↩️ Ver", CallbackMode+string(calendar.ModeView)))
		kb.AddRow(controls)
	}

	kb.Row(
		keyboard.Button("🖼 Imagen", CallbackWeekImage),
		keyboard.Button("❌ Salir", CallbackExit),
	)

	return kb.Build()
}

// cellAt finds the cell for an hour; days with a shorter schedule (Sunday)
// simply have no cell past their last hour.
func cellAt(day calendar.Day, hour int) (calendar.Cell, bool) {
	i := hour - calendar.FirstHour
	if i < 0 || i >= len(day.Cells) {
		return calendar.Cell{}, false
	}
	return day.Cells[i], true
}
