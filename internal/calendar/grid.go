package calendar

import "github.com/autoescuela/reservas-bot/internal/model"

// CellKind classifies a (date, hour) cell for rendering. The constants are
// ordered by precedence: classification walks them top to bottom and the
// first match wins, so later kinds only show when no earlier one applies.
type CellKind int

const (
	CellNoBlock      CellKind = iota // no availability block at this slot
	CellPastAttended                 // past, reservation attended
	CellPastMissed                   // past, reservation marked absent
	CellPastReserved                 // past, reservation with undecided attendance
	CellPast                         // past, no reservation held
	CellReserved                     // current/future slot the caller holds
	CellFull                         // at capacity
	CellRestricted                   // blocked by the advance-notice rule
	CellAvailable                    // bookable
)

// Cell is one grid position with everything a renderer needs. Appearance is
// fully determined by Kind plus Selected; behavior by Clickable.
type Cell struct {
	Date        model.Date
	Hour        int
	Block       *model.Block
	Reservation *model.Reservation
	Kind        CellKind
	Selected    bool
	Clickable   bool
}

// Day is one rendered day column.
type Day struct {
	Date  model.Date
	Cells []Cell
}

// BuildGrid classifies every visible slot of the week. It is a pure function
// of its inputs: identical snapshots, selection and context always produce
// identical grids.
func BuildGrid(week [7]model.Date, idx *Index, pc Context, sel *Selection) []Day {
	days := make([]Day, 7)
	for i, date := range week {
		hours := HoursFor(i)
		day := Day{Date: date, Cells: make([]Cell, 0, len(hours))}
		for _, hour := range hours {
			day.Cells = append(day.Cells, classify(date, hour, idx, pc, sel))
		}
		days[i] = day
	}
	return days
}

func classify(date model.Date, hour int, idx *Index, pc Context, sel *Selection) Cell {
	cell := Cell{Date: date, Hour: hour}

	block := idx.BlockAt(date, hour)
	if block == nil {
		cell.Kind = CellNoBlock
		return cell
	}
	cell.Block = block
	cell.Reservation = idx.ReservationOn(block.ID)

	past := IsPastDate(date, pc.Now) || IsPastHour(date, hour, pc.Now)

	switch {
	case past && cell.Reservation != nil && cell.Reservation.AttendanceDecided():
		if *cell.Reservation.Asistencia.Asistio {
			cell.Kind = CellPastAttended
		} else {
			cell.Kind = CellPastMissed
		}
	case past && cell.Reservation != nil:
		cell.Kind = CellPastReserved
	case past:
		cell.Kind = CellPast
	case cell.Reservation != nil:
		cell.Kind = CellReserved
	case block.IsFull():
		cell.Kind = CellFull
	case RequiresAdvanceNotice(date, pc.Categoria, pc.AdminMode, pc.Now):
		cell.Kind = CellRestricted
	default:
		cell.Kind = CellAvailable
	}

	cell.Selected = sel.Contains(block.ID)
	cell.Clickable = clickable(block, idx, pc, sel)
	return cell
}

func clickable(block *model.Block, idx *Index, pc Context, sel *Selection) bool {
	switch sel.Mode() {
	case ModeReserve:
		ok, _ := CanReserve(block, idx, pc, sel.Count(), sel.Contains(block.ID))
		return ok || sel.Contains(block.ID)
	case ModeCancel:
		ok, _ := CanCancel(block, idx, pc)
		return ok
	default:
		return false
	}
}
