package formatting

import "github.com/autoescuela/reservas-bot/internal/calendar"

// CellSymbol maps a grid cell to the glyph shown on its keyboard button.
// Selection wins over the underlying kind.
func CellSymbol(c calendar.Cell) string {
	if c.Selected {
		return "🟡"
	}
	switch c.Kind {
	case calendar.CellNoBlock:
		return "·"
	case calendar.CellPastAttended:
		return "✅"
	case calendar.CellPastMissed:
		return "✖️"
	case calendar.CellPastReserved:
		return "📘"
	case calendar.CellPast:
		return "▫️"
	case calendar.CellReserved:
		return "🔵"
	case calendar.CellFull:
		return "🔴"
	case calendar.CellRestricted:
		return "🔒"
	case calendar.CellAvailable:
		return "🟢"
	default:
		return "·"
	}
}
