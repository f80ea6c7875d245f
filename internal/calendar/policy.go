package calendar

import (
	"time"

	"github.com/autoescuela/reservas-bot/internal/model"
)

// GraceWindow absorbs clock skew and lets an imminently-starting class still
// be cancelled: a slot only counts as "past" once its start is more than this
// far behind now.
const GraceWindow = 15 * time.Minute

// Context carries the per-caller inputs the eligibility predicates need.
// Role, category and quota are passed in explicitly so the calendar never
// reaches into session state.
type Context struct {
	Now            time.Time
	AdminMode      bool
	Categoria      string
	QuotaRemaining int
}

// Denial explains why a slot is not eligible for the attempted action.
type Denial int

const (
	DenialNone Denial = iota
	DenialNoBlock
	DenialPast
	DenialAdvanceNotice
	DenialFull
	DenialAlreadyReserved
	DenialQuota
	DenialNoReservation
	DenialAttendanceLocked
)

// IsPastDate reports whether the date's midnight is before today's midnight.
func IsPastDate(date model.Date, now time.Time) bool {
	return date.Before(model.DateOf(now))
}

// IsPastHour reports whether the slot's start instant is already more than
// GraceWindow behind now.
func IsPastHour(date model.Date, hour int, now time.Time) bool {
	start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, now.Location())
	return start.Before(now.Add(-GraceWindow))
}

// RequiresAdvanceNotice applies the A-II one-day lead-time rule. The boundary
// is date-only (fecha <= hoy), matching the backend check exactly, even
// though the rule is described as "24 hours" — an evening booking for early
// tomorrow passes. Admins bypass the rule entirely.
func RequiresAdvanceNotice(date model.Date, categoria string, adminMode bool, now time.Time) bool {
	if adminMode || categoria != model.CategoryAII {
		return false
	}
	return !date.After(model.DateOf(now).Time)
}

// CanReserve decides whether the block is selectable in reserve mode.
// selectedCount and alreadySelected describe the current selection so the
// admin quota counts a slot against the limit only when newly selected.
func CanReserve(b *model.Block, idx *Index, pc Context, selectedCount int, alreadySelected bool) (bool, Denial) {
	if b == nil {
		return false, DenialNoBlock
	}
	if IsPastDate(b.Fecha, pc.Now) || IsPastHour(b.Fecha, int(b.HoraInicio), pc.Now) {
		return false, DenialPast
	}
	if RequiresAdvanceNotice(b.Fecha, pc.Categoria, pc.AdminMode, pc.Now) {
		return false, DenialAdvanceNotice
	}
	if b.IsFull() {
		return false, DenialFull
	}
	if idx.HasReservationOn(b.ID) {
		return false, DenialAlreadyReserved
	}
	if pc.AdminMode && !alreadySelected && selectedCount >= pc.QuotaRemaining {
		return false, DenialQuota
	}
	return true, DenialNone
}

// CanCancel decides whether the block is selectable in cancel mode: the
// caller must hold a reservation on it, the slot must not be past, and the
// reservation's attendance flag must still be undecided.
func CanCancel(b *model.Block, idx *Index, pc Context) (bool, Denial) {
	if b == nil {
		return false, DenialNoBlock
	}
	res := idx.ReservationOn(b.ID)
	if res == nil {
		return false, DenialNoReservation
	}
	if IsPastDate(b.Fecha, pc.Now) || IsPastHour(b.Fecha, int(b.HoraInicio), pc.Now) {
		return false, DenialPast
	}
	if res.AttendanceDecided() {
		return false, DenialAttendanceLocked
	}
	return true, DenialNone
}
