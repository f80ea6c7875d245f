package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/api"
	"github.com/autoescuela/reservas-bot/internal/calendar"
	"github.com/autoescuela/reservas-bot/internal/model"
)

// fakeBackend implements BackendClient with settable responses and call
// counters.
type fakeBackend struct {
	blocks       []*model.Block
	reservations []*model.Reservation

	weekBlocksFn func(week int) ([]*model.Block, error)
	createErr    error
	deleteErr    error
	created      []*model.Reservation
	deleted      []*model.Reservation

	weekBlocksCalls int
	createCalls     int
	deleteCalls     int
}

func (f *fakeBackend) WeekBlocks(ctx context.Context, week int, alumnoID *int64) ([]*model.Block, error) {
	f.weekBlocksCalls++
	if f.weekBlocksFn != nil {
		return f.weekBlocksFn(week)
	}
	return f.blocks, nil
}

func (f *fakeBackend) ReservationsByAlumno(ctx context.Context, alumnoID int64, week *int) ([]*model.Reservation, error) {
	return f.reservations, nil
}

func (f *fakeBackend) CreateReservations(ctx context.Context, matriculaID int64, blockIDs []int64) ([]*model.Reservation, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeBackend) DeleteReservations(ctx context.Context, matriculaID int64, reservaIDs []int64) ([]*model.Reservation, error) {
	f.deleteCalls++
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return f.deleted, nil
}

var testNow = time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)

func int64Ptr(v int64) *int64 { return &v }

func testBlock(id int64, day, hora, capacidad, reservas int) *model.Block {
	return &model.Block{
		ID:               id,
		Fecha:            model.NewDate(2024, time.March, day),
		HoraInicio:       model.HourOfDay(hora),
		HoraFin:          model.HourOfDay(hora + 1),
		CapacidadMax:     capacidad,
		ReservasActuales: reservas,
	}
}

// newTestSession builds a loaded session with a fixed clock and manual
// reconcile scheduling.
func newTestSession(t *testing.T, backend *fakeBackend, profile Profile) (*CalendarSession, *[]func()) {
	t.Helper()

	var scheduled []func()
	s := NewCalendarSession(backend, profile, zap.NewNop())
	s.now = func() time.Time { return testNow }
	s.schedule = func(d time.Duration, f func()) { scheduled = append(scheduled, f) }

	require.NoError(t, s.Load(context.Background()))
	return s, &scheduled
}

func studentProfile() Profile {
	return Profile{AlumnoID: int64Ptr(7), MatriculaID: 3, Categoria: "B-I", Quota: 5}
}

func TestLoadFiltersReservationsByEnrollment(t *testing.T) {
	b := testBlock(1, 7, 9, 2, 1)
	backend := &fakeBackend{
		blocks: []*model.Block{b},
		reservations: []*model.Reservation{
			{ID: 10, IDBloque: 1, IDMatricula: 3, Bloque: b},
			{ID: 11, IDBloque: 1, IDMatricula: 99, Bloque: b},
		},
	}

	s, _ := newTestSession(t, backend, studentProfile())

	grid := s.Grid()
	cell := grid[3].Cells[9-calendar.FirstHour] // Thursday 09:00
	require.NotNil(t, cell.Reservation)
	assert.Equal(t, int64(10), cell.Reservation.ID, "other enrollments' reservations are ignored")
}

func TestGlobalViewLoadsNoReservations(t *testing.T) {
	backend := &fakeBackend{blocks: []*model.Block{testBlock(1, 7, 9, 2, 1)}}
	s, _ := newTestSession(t, backend, Profile{AdminMode: true, GlobalView: true})

	grid := s.Grid()
	assert.Nil(t, grid[3].Cells[9-calendar.FirstHour].Reservation)
}

func TestNavigateBoundsByRole(t *testing.T) {
	backend := &fakeBackend{}
	s, _ := newTestSession(t, backend, studentProfile())

	assert.True(t, s.CanNavigate(+1))
	require.NoError(t, s.Navigate(context.Background(), +1))
	assert.False(t, s.CanNavigate(+1), "students stop one week out")
	assert.True(t, s.CanNavigate(-1))

	admin, _ := newTestSession(t, backend, Profile{AdminMode: true, GlobalView: true})
	for i := 0; i < 10; i++ {
		require.NoError(t, admin.Navigate(context.Background(), -1))
	}
	assert.True(t, admin.CanNavigate(-1), "admins navigate without bounds")
	assert.Equal(t, -10, admin.WeekOffset())
}

func TestNavigateClearsSelection(t *testing.T) {
	backend := &fakeBackend{blocks: []*model.Block{testBlock(1, 7, 9, 2, 0)}}
	s, _ := newTestSession(t, backend, studentProfile())

	s.SetMode(calendar.ModeReserve)
	_, denial := s.ToggleSlot(1)
	require.Equal(t, calendar.DenialNone, denial)
	require.Equal(t, 1, s.SelectionCount())

	require.NoError(t, s.Navigate(context.Background(), +1))
	assert.Equal(t, 0, s.SelectionCount())
	assert.Equal(t, calendar.ModeReserve, s.Mode(), "mode survives navigation")
}

// Deselecting must report a change with no denial, so the handler redraws
// the grid instead of treating the click as rejected.
func TestToggleSlotDeselectReportsChange(t *testing.T) {
	backend := &fakeBackend{blocks: []*model.Block{testBlock(1, 7, 9, 2, 0)}}
	s, _ := newTestSession(t, backend, studentProfile())
	s.SetMode(calendar.ModeReserve)

	changed, denial := s.ToggleSlot(1)
	require.True(t, changed)
	require.Equal(t, calendar.DenialNone, denial)
	require.Equal(t, 1, s.SelectionCount())

	changed, denial = s.ToggleSlot(1)
	assert.True(t, changed, "deselection is a selection change")
	assert.Equal(t, calendar.DenialNone, denial)
	assert.Equal(t, 0, s.SelectionCount())

	// A genuinely denied click reports no change plus the reason.
	b := backend.blocks[0]
	b.ReservasActuales = b.CapacidadMax
	changed, denial = s.ToggleSlot(1)
	assert.False(t, changed)
	assert.Equal(t, calendar.DenialFull, denial)
}

func TestConfirmReserveAppliesOptimisticPatch(t *testing.T) {
	b1 := testBlock(1, 7, 9, 2, 0)
	b2 := testBlock(2, 7, 10, 2, 1)
	backend := &fakeBackend{
		blocks: []*model.Block{b1, b2},
		created: []*model.Reservation{
			{ID: 20, IDBloque: 1, IDMatricula: 3},
			{ID: 21, IDBloque: 2, IDMatricula: 3},
		},
	}
	s, scheduled := newTestSession(t, backend, studentProfile())

	s.SetMode(calendar.ModeReserve)
	s.ToggleSlot(1)
	s.ToggleSlot(2)

	var notified bool
	s.SetOnReservationsChanged(func() { notified = true })

	result, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, calendar.ModeReserve, result.Mode)
	assert.Equal(t, 2, result.Count)

	assert.Equal(t, 1, b1.ReservasActuales)
	assert.Equal(t, 2, b2.ReservasActuales)
	assert.Equal(t, 3, s.Quota(), "two hours spent")
	assert.Equal(t, calendar.ModeView, s.Mode())
	assert.Equal(t, 0, s.SelectionCount())
	assert.True(t, notified)
	assert.Len(t, *scheduled, 1, "reconcile refetch queued")

	grid := s.Grid()
	assert.Equal(t, calendar.CellReserved, grid[3].Cells[9-calendar.FirstHour].Kind)
}

func TestConfirmReserveNeverExceedsCapacity(t *testing.T) {
	// Snapshot already at capacity (raced with another booker): the
	// optimistic counter must not pass CapacidadMax.
	b := testBlock(1, 7, 9, 2, 2)
	b.ReservasActuales = 2
	backend := &fakeBackend{
		blocks:  []*model.Block{b},
		created: []*model.Reservation{{ID: 20, IDBloque: 1, IDMatricula: 3}},
	}
	s, _ := newTestSession(t, backend, Profile{AdminMode: true, AlumnoID: int64Ptr(7), MatriculaID: 3, Quota: 5})

	// Force the block into the selection while it still had room.
	b.ReservasActuales = 1
	s.SetMode(calendar.ModeReserve)
	s.ToggleSlot(1)
	b.ReservasActuales = 2

	_, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, b.ReservasActuales, "counter capped at capacity")
}

func TestConfirmCancelRemovesAndFloorsAtZero(t *testing.T) {
	b := testBlock(1, 7, 9, 2, 1)
	res := &model.Reservation{ID: 30, IDBloque: 1, IDMatricula: 3, Bloque: b}
	backend := &fakeBackend{
		blocks:       []*model.Block{b},
		reservations: []*model.Reservation{res},
		deleted:      []*model.Reservation{{ID: 30}},
	}
	s, scheduled := newTestSession(t, backend, studentProfile())

	s.SetMode(calendar.ModeCancel)
	_, denial := s.ToggleSlot(1)
	require.Equal(t, calendar.DenialNone, denial)

	// Reconciliation raced the counter down to zero already.
	b.ReservasActuales = 0

	result, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 0, b.ReservasActuales, "counter floors at zero")
	assert.Equal(t, 6, s.Quota(), "cancelled hour returned")
	assert.Len(t, *scheduled, 1)

	grid := s.Grid()
	assert.Nil(t, grid[3].Cells[9-calendar.FirstHour].Reservation)
}

func TestConfirmBackendRejectionKeepsState(t *testing.T) {
	b := testBlock(1, 7, 9, 2, 0)
	backend := &fakeBackend{
		blocks:    []*model.Block{b},
		createErr: &api.APIError{Status: 409, Mensaje: "El bloque ya está lleno"},
	}
	s, scheduled := newTestSession(t, backend, studentProfile())

	s.SetMode(calendar.ModeReserve)
	s.ToggleSlot(1)

	_, err := s.Confirm(context.Background())
	require.Error(t, err)
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 409, apiErr.Status)

	assert.Equal(t, calendar.ModeReserve, s.Mode(), "mode intact for retry")
	assert.Equal(t, 1, s.SelectionCount(), "selection intact for retry")
	assert.Equal(t, 0, b.ReservasActuales, "no optimistic patch applied")
	assert.Equal(t, 5, s.Quota())
	assert.Empty(t, *scheduled)
}

func TestConfirmTransportFailureReloads(t *testing.T) {
	b := testBlock(1, 7, 9, 2, 0)
	backend := &fakeBackend{
		blocks:    []*model.Block{b},
		createErr: errors.New("connection refused"),
	}
	s, _ := newTestSession(t, backend, studentProfile())
	initialFetches := backend.weekBlocksCalls

	s.SetMode(calendar.ModeReserve)
	s.ToggleSlot(1)

	_, err := s.Confirm(context.Background())
	require.Error(t, err)
	_, isAPIErr := api.AsAPIError(err)
	assert.False(t, isAPIErr)

	assert.Equal(t, calendar.ModeView, s.Mode(), "session reset after transport failure")
	assert.Equal(t, 0, s.SelectionCount())
	assert.Equal(t, initialFetches+1, backend.weekBlocksCalls, "snapshot reloaded")
}

func TestConfirmRequiresActionableState(t *testing.T) {
	backend := &fakeBackend{blocks: []*model.Block{testBlock(1, 7, 9, 2, 0)}}
	s, _ := newTestSession(t, backend, studentProfile())

	_, err := s.Confirm(context.Background())
	assert.Error(t, err, "view mode has nothing to confirm")

	s.SetMode(calendar.ModeReserve)
	_, err = s.Confirm(context.Background())
	assert.Error(t, err, "empty selection")
	assert.Equal(t, 0, backend.createCalls)
}

// A fetch that resolves after a newer one was issued must not overwrite the
// newer snapshot.
func TestStaleWeekFetchDiscarded(t *testing.T) {
	oldBlock := testBlock(1, 7, 9, 2, 0)
	newBlock := testBlock(2, 7, 10, 2, 0)

	backend := &fakeBackend{}
	s := NewCalendarSession(backend, Profile{AdminMode: true, GlobalView: true}, zap.NewNop())
	s.now = func() time.Time { return testNow }
	s.schedule = func(d time.Duration, f func()) {}

	// The first fetch triggers a second, newer load before returning, like a
	// slow response landing after rapid week navigation.
	first := true
	backend.weekBlocksFn = func(week int) ([]*model.Block, error) {
		if first {
			first = false
			if err := s.Load(context.Background()); err != nil {
				t.Error(err)
			}
			return []*model.Block{oldBlock}, nil
		}
		return []*model.Block{newBlock}, nil
	}

	require.NoError(t, s.Load(context.Background()))

	grid := s.Grid()
	thursday := grid[3]
	assert.Nil(t, thursday.Cells[9-calendar.FirstHour].Block, "stale snapshot discarded")
	assert.NotNil(t, thursday.Cells[10-calendar.FirstHour].Block, "newest snapshot kept")
}

func TestReconcileRefetchNotifies(t *testing.T) {
	b := testBlock(1, 7, 9, 2, 0)
	backend := &fakeBackend{
		blocks:  []*model.Block{b},
		created: []*model.Reservation{{ID: 20, IDBloque: 1, IDMatricula: 3}},
	}
	s, scheduled := newTestSession(t, backend, studentProfile())

	s.SetMode(calendar.ModeReserve)
	s.ToggleSlot(1)
	_, err := s.Confirm(context.Background())
	require.NoError(t, err)

	notifications := 0
	s.SetOnReservationsChanged(func() { notifications++ })

	require.Len(t, *scheduled, 1)
	fetchesBefore := backend.weekBlocksCalls
	(*scheduled)[0]()

	assert.Equal(t, fetchesBefore+1, backend.weekBlocksCalls, "authoritative refetch ran")
	assert.Equal(t, 1, notifications)
}
