package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autoescuela/reservas-bot/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func block(id int64, fecha model.Date, hora, capacidad, reservas int) *model.Block {
	return &model.Block{
		ID:               id,
		Fecha:            fecha,
		HoraInicio:       model.HourOfDay(hora),
		HoraFin:          model.HourOfDay(hora + 1),
		CapacidadMax:     capacidad,
		ReservasActuales: reservas,
	}
}

func TestIsPastHourGraceWindow(t *testing.T) {
	today := model.NewDate(2024, time.March, 6)
	hour := 10 // class starts 10:00

	tests := []struct {
		name string
		now  time.Time
		past bool
	}{
		{"before start", time.Date(2024, time.March, 6, 9, 0, 0, 0, time.Local), false},
		{"at start", time.Date(2024, time.March, 6, 10, 0, 0, 0, time.Local), false},
		{"inside grace", time.Date(2024, time.March, 6, 10, 14, 59, 0, time.Local), false},
		{"at grace boundary", time.Date(2024, time.March, 6, 10, 15, 0, 0, time.Local), false},
		{"past grace", time.Date(2024, time.March, 6, 10, 15, 1, 0, time.Local), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.past, IsPastHour(today, hour, tt.now))
		})
	}
}

// The A-II rule compares dates only: a late-evening booking for tomorrow
// morning passes even though fewer than 24 hours remain.
func TestAdvanceNoticeDateBoundary(t *testing.T) {
	now := time.Date(2024, time.March, 6, 23, 30, 0, 0, time.Local)
	today := model.NewDate(2024, time.March, 6)
	tomorrow := model.NewDate(2024, time.March, 7)

	assert.True(t, RequiresAdvanceNotice(today, model.CategoryAII, false, now))
	assert.False(t, RequiresAdvanceNotice(tomorrow, model.CategoryAII, false, now),
		"tomorrow morning is bookable tonight")

	// Other categories and admins are never restricted.
	assert.False(t, RequiresAdvanceNotice(today, "B-I", false, now))
	assert.False(t, RequiresAdvanceNotice(today, model.CategoryAII, true, now))
}

func TestCanReserveFullBlock(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	b := block(1, model.NewDate(2024, time.March, 7), 9, 5, 5)
	idx := NewIndex([]*model.Block{b}, nil)
	pc := Context{Now: now, QuotaRemaining: 10}

	ok, denial := CanReserve(b, idx, pc, 0, false)
	assert.False(t, ok)
	assert.Equal(t, DenialFull, denial)
}

func TestCanReserveDenials(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	tomorrow := model.NewDate(2024, time.March, 7)

	held := block(2, tomorrow, 10, 2, 1)
	idx := NewIndex(
		[]*model.Block{held},
		[]*model.Reservation{{ID: 50, IDBloque: 2, Bloque: held}},
	)
	pc := Context{Now: now, QuotaRemaining: 10}

	t.Run("nil block", func(t *testing.T) {
		ok, denial := CanReserve(nil, idx, pc, 0, false)
		assert.False(t, ok)
		assert.Equal(t, DenialNoBlock, denial)
	})

	t.Run("past date", func(t *testing.T) {
		past := block(3, model.NewDate(2024, time.March, 5), 9, 2, 0)
		ok, denial := CanReserve(past, idx, pc, 0, false)
		assert.False(t, ok)
		assert.Equal(t, DenialPast, denial)
	})

	t.Run("already reserved", func(t *testing.T) {
		ok, denial := CanReserve(held, idx, pc, 0, false)
		assert.False(t, ok)
		assert.Equal(t, DenialAlreadyReserved, denial)
	})

	t.Run("advance notice for A-II", func(t *testing.T) {
		todayBlock := block(4, model.NewDate(2024, time.March, 6), 16, 2, 0)
		aii := Context{Now: now, Categoria: model.CategoryAII, QuotaRemaining: 10}
		ok, denial := CanReserve(todayBlock, idx, aii, 0, false)
		assert.False(t, ok)
		assert.Equal(t, DenialAdvanceNotice, denial)
	})
}

// The selection-size quota cap applies in admin mode only; a slot already
// in the set never counts against it again.
func TestCanReserveQuota(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	b := block(1, model.NewDate(2024, time.March, 7), 9, 2, 0)
	idx := NewIndex([]*model.Block{b}, nil)

	adminPC := Context{Now: now, AdminMode: true, QuotaRemaining: 2}

	ok, _ := CanReserve(b, idx, adminPC, 1, false)
	assert.True(t, ok, "second pick within quota")

	ok, denial := CanReserve(b, idx, adminPC, 2, false)
	assert.False(t, ok, "third pick exceeds quota")
	assert.Equal(t, DenialQuota, denial)

	ok, _ = CanReserve(b, idx, adminPC, 2, true)
	assert.True(t, ok, "already-selected slot stays toggleable at the limit")

	studentPC := Context{Now: now, QuotaRemaining: 2}
	ok, _ = CanReserve(b, idx, studentPC, 2, false)
	assert.True(t, ok, "student selections have no per-set cap")
}

func TestCanCancel(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	tomorrow := model.NewDate(2024, time.March, 7)
	pc := Context{Now: now}

	t.Run("own future reservation", func(t *testing.T) {
		b := block(1, tomorrow, 9, 2, 1)
		idx := NewIndex([]*model.Block{b}, []*model.Reservation{{ID: 10, IDBloque: 1, Bloque: b}})
		ok, denial := CanCancel(b, idx, pc)
		assert.True(t, ok)
		assert.Equal(t, DenialNone, denial)
	})

	t.Run("no reservation held", func(t *testing.T) {
		b := block(2, tomorrow, 9, 2, 1)
		idx := NewIndex([]*model.Block{b}, nil)
		ok, denial := CanCancel(b, idx, pc)
		assert.False(t, ok)
		assert.Equal(t, DenialNoReservation, denial)
	})

	t.Run("past slot", func(t *testing.T) {
		b := block(3, model.NewDate(2024, time.March, 5), 9, 2, 1)
		idx := NewIndex([]*model.Block{b}, []*model.Reservation{{ID: 11, IDBloque: 3, Bloque: b}})
		ok, denial := CanCancel(b, idx, pc)
		assert.False(t, ok)
		assert.Equal(t, DenialPast, denial)
	})

	t.Run("attendance decided", func(t *testing.T) {
		b := block(4, tomorrow, 9, 2, 1)
		res := &model.Reservation{
			ID: 12, IDBloque: 4, Bloque: b,
			Asistencia: &model.Attendance{ID: 1, IDReserva: 12, Asistio: boolPtr(false)},
		}
		idx := NewIndex([]*model.Block{b}, []*model.Reservation{res})
		ok, denial := CanCancel(b, idx, pc)
		assert.False(t, ok)
		assert.Equal(t, DenialAttendanceLocked, denial)
	})
}
