package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/api"
	"github.com/autoescuela/reservas-bot/internal/calendar"
	"github.com/autoescuela/reservas-bot/internal/model"
)

// reconcileDelay is how long after an optimistic patch the authoritative
// block refetch runs. Long enough to not block the interaction, short enough
// that concurrent bookers' changes show up quickly.
const reconcileDelay = time.Second

// BackendClient is the slice of the REST client a calendar session uses.
type BackendClient interface {
	WeekBlocks(ctx context.Context, week int, alumnoID *int64) ([]*model.Block, error)
	ReservationsByAlumno(ctx context.Context, alumnoID int64, week *int) ([]*model.Reservation, error)
	CreateReservations(ctx context.Context, matriculaID int64, blockIDs []int64) ([]*model.Reservation, error)
	DeleteReservations(ctx context.Context, matriculaID int64, reservaIDs []int64) ([]*model.Reservation, error)
}

// Profile is the mode descriptor driving one calendar instance: who the
// calendar is for, under which role rules, and against which enrollment.
// The three original variants (student, admin-per-enrollment, admin-global)
// are all configurations of this struct.
type Profile struct {
	AdminMode   bool
	GlobalView  bool // read-only, no reservations loaded
	AlumnoID    *int64
	MatriculaID int64
	Categoria   string
	Quota       int // remaining reservable hours
}

// ConfirmResult reports what a confirmed action changed.
type ConfirmResult struct {
	Mode  calendar.Mode
	Count int
}

// CalendarSession owns one chat's weekly calendar: the block and reservation
// snapshots, the selection state machine, week navigation, and the
// confirmation flow with its optimistic patches. All mutation happens under
// one mutex; the Telegram handlers call in from the bot's goroutines.
type CalendarSession struct {
	mu     sync.Mutex
	client BackendClient
	logger *zap.Logger

	profile    Profile
	weekOffset int

	blocks       []*model.Block
	reservations []*model.Reservation
	idx          *calendar.Index
	sel          *calendar.Selection

	// fetchGen guards against a stale week's response overwriting a newer
	// one during rapid navigation: only the latest issued fetch may apply.
	fetchGen uint64

	now      func() time.Time
	schedule func(time.Duration, func())

	onReservationsChanged func()
}

func NewCalendarSession(client BackendClient, profile Profile, logger *zap.Logger) *CalendarSession {
	return &CalendarSession{
		client:   client,
		logger:   logger,
		profile:  profile,
		sel:      calendar.NewSelection(),
		now:      time.Now,
		schedule: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Load fetches the current week's blocks and the caller's reservations
// concurrently and joins them before the first render.
func (s *CalendarSession) Load(ctx context.Context) error {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	week := s.weekOffset
	profile := s.profile
	s.mu.Unlock()

	var (
		wg           sync.WaitGroup
		blocks       []*model.Block
		reservations []*model.Reservation
		blocksErr    error
		reservasErr  error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		blocks, blocksErr = s.client.WeekBlocks(ctx, week, profile.AlumnoID)
	}()

	if !profile.GlobalView && profile.AlumnoID != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reservations, reservasErr = s.fetchReservations(ctx, profile)
		}()
	}
	wg.Wait()

	if blocksErr != nil {
		return fmt.Errorf("load blocks: %w", blocksErr)
	}
	if reservasErr != nil {
		return fmt.Errorf("load reservations: %w", reservasErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		s.logger.Debug("Discarding stale week fetch",
			zap.Uint64("gen", gen),
			zap.Uint64("latest", s.fetchGen))
		return nil
	}
	s.blocks = blocks
	s.reservations = reservations
	s.rebuildIndex()
	return nil
}

// fetchReservations narrows the student's reservations to the active
// enrollment when one is set (admin enrollment mode and student mode both
// pin a matrícula; the backend returns all of the student's reservations).
func (s *CalendarSession) fetchReservations(ctx context.Context, profile Profile) ([]*model.Reservation, error) {
	all, err := s.client.ReservationsByAlumno(ctx, *profile.AlumnoID, nil)
	if err != nil {
		return nil, err
	}
	if profile.MatriculaID == 0 {
		return all, nil
	}
	filtered := all[:0]
	for _, r := range all {
		if r.IDMatricula == profile.MatriculaID {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (s *CalendarSession) rebuildIndex() {
	s.idx = calendar.NewIndex(s.blocks, s.reservations)
}

func (s *CalendarSession) policyContext() calendar.Context {
	return calendar.Context{
		Now:            s.now(),
		AdminMode:      s.profile.AdminMode,
		Categoria:      s.profile.Categoria,
		QuotaRemaining: s.profile.Quota,
	}
}

// SetOnReservationsChanged installs the hook fired after a successful
// confirm or a reconciliation pass, letting parent screens refresh derived
// state. Guarded by the session mutex; safe to call after the session is
// already shared.
func (s *CalendarSession) SetOnReservationsChanged(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReservationsChanged = fn
}

// Profile returns the mode descriptor this session was opened with.
func (s *CalendarSession) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// WeekOffset returns the currently displayed week, 0 being the current one.
func (s *CalendarSession) WeekOffset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weekOffset
}

// CanNavigate reports whether moving the week window by delta is allowed
// under the caller's role: students stay within one week of today.
func (s *CalendarSession) CanNavigate(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.weekOffset + delta
	if s.profile.AdminMode {
		return true
	}
	return target >= -calendar.StudentWeekSpan && target <= calendar.StudentWeekSpan
}

// Navigate moves the week window and reloads. The selection is cleared
// before the fetch so a slow response never leaves selections pointing at
// blocks from another week.
func (s *CalendarSession) Navigate(ctx context.Context, delta int) error {
	if !s.CanNavigate(delta) {
		return nil
	}
	s.mu.Lock()
	s.weekOffset += delta
	s.sel.SetMode(s.sel.Mode())
	s.mu.Unlock()
	return s.Load(ctx)
}

// Mode returns the current interaction mode.
func (s *CalendarSession) Mode() calendar.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Mode()
}

// SetMode enters reserve or cancel mode (or returns to view), clearing any
// selection.
func (s *CalendarSession) SetMode(m calendar.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SetMode(m)
}

// Exit returns the session to view mode, dropping the selection.
func (s *CalendarSession) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Reset()
}

// SelectionCount returns how many slots are currently selected.
func (s *CalendarSession) SelectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Count()
}

// Quota returns the remaining-hour quota the session currently assumes.
func (s *CalendarSession) Quota() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Quota
}

// SetQuota lets the owning screen push a refreshed remaining-hour count.
func (s *CalendarSession) SetQuota(q int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Quota = q
}

// ToggleSlot flips the selection state of the block, subject to the active
// mode's eligibility rules. The first return reports whether the selection
// changed; deselection always does.
func (s *CalendarSession) ToggleSlot(blockID int64) (bool, calendar.Denial) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Toggle(s.blockByID(blockID), s.idx, s.policyContext())
}

func (s *CalendarSession) blockByID(id int64) *model.Block {
	for _, b := range s.blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Grid classifies the displayed week for rendering.
func (s *CalendarSession) Grid() []calendar.Day {
	s.mu.Lock()
	defer s.mu.Unlock()
	week := calendar.WeekDates(s.now(), s.weekOffset)
	return calendar.BuildGrid(week, s.idx, s.policyContext(), s.sel)
}

// WeekDates returns the displayed week's dates.
func (s *CalendarSession) WeekDates() [7]model.Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calendar.WeekDates(s.now(), s.weekOffset)
}

// Confirm executes the selected action against the backend. On success the
// local snapshot is patched optimistically, an authoritative refetch is
// scheduled, and the session returns to view mode. A backend rejection
// (*api.APIError) leaves mode and selection intact so the user may retry; a
// transport failure reloads everything to reconverge on server truth.
func (s *CalendarSession) Confirm(ctx context.Context) (*ConfirmResult, error) {
	s.mu.Lock()
	mode := s.sel.Mode()
	selected := s.sel.IDs()
	matriculaID := s.profile.MatriculaID
	s.mu.Unlock()

	if mode != calendar.ModeReserve && mode != calendar.ModeCancel {
		return nil, fmt.Errorf("nothing to confirm in %s mode", mode)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("empty selection")
	}
	if matriculaID == 0 {
		return nil, fmt.Errorf("no enrollment bound to this calendar")
	}

	var err error
	switch mode {
	case calendar.ModeReserve:
		err = s.confirmReserve(ctx, matriculaID, selected)
	case calendar.ModeCancel:
		err = s.confirmCancel(ctx, matriculaID, selected)
	}
	if err != nil {
		if _, rejected := api.AsAPIError(err); rejected {
			return nil, err
		}
		// Transport-level failure: the optimistic state may be anything,
		// reload both snapshots and start clean.
		s.logger.Error("Confirm transport failure, reloading", zap.Error(err))
		s.Exit()
		if reloadErr := s.Load(ctx); reloadErr != nil {
			s.logger.Error("Recovery reload failed", zap.Error(reloadErr))
		}
		return nil, err
	}

	s.mu.Lock()
	s.sel.Reset()
	changed := s.onReservationsChanged
	s.mu.Unlock()

	s.scheduleReconcile()
	if changed != nil {
		changed()
	}
	return &ConfirmResult{Mode: mode, Count: len(selected)}, nil
}

func (s *CalendarSession) confirmReserve(ctx context.Context, matriculaID int64, blockIDs []int64) error {
	created, err := s.client.CreateReservations(ctx, matriculaID, blockIDs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range blockIDs {
		if b := s.blockByID(id); b != nil && b.ReservasActuales < b.CapacidadMax {
			b.ReservasActuales++
		}
	}
	s.reservations = append(s.reservations, created...)
	s.profile.Quota -= len(blockIDs)
	s.rebuildIndex()

	s.logger.Info("Reservations created",
		zap.Int64("matricula_id", matriculaID),
		zap.Int("count", len(blockIDs)))
	return nil
}

func (s *CalendarSession) confirmCancel(ctx context.Context, matriculaID int64, blockIDs []int64) error {
	s.mu.Lock()
	// Resolve blocks to the caller's reservation ids, dropping any that no
	// longer resolve (the snapshot may have reconciled underneath).
	reservaIDs := make([]int64, 0, len(blockIDs))
	for _, id := range blockIDs {
		if r := s.idx.ReservationOn(id); r != nil {
			reservaIDs = append(reservaIDs, r.ID)
		}
	}
	s.mu.Unlock()

	if len(reservaIDs) == 0 {
		return fmt.Errorf("selected blocks no longer hold reservations")
	}

	removed, err := s.client.DeleteReservations(ctx, matriculaID, reservaIDs)
	if err != nil {
		return err
	}
	// The server reports what it actually removed; fall back to what we sent.
	if len(removed) == 0 {
		for _, id := range reservaIDs {
			removed = append(removed, &model.Reservation{ID: id})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removedSet := make(map[int64]bool, len(removed))
	for _, r := range removed {
		removedSet[r.ID] = true
	}
	kept := s.reservations[:0]
	for _, r := range s.reservations {
		if removedSet[r.ID] {
			if b := s.blockByID(r.IDBloque); b != nil && b.ReservasActuales > 0 {
				b.ReservasActuales--
			}
			continue
		}
		kept = append(kept, r)
	}
	s.reservations = kept
	s.profile.Quota += len(removedSet)
	s.rebuildIndex()

	s.logger.Info("Reservations canceled",
		zap.Int64("matricula_id", matriculaID),
		zap.Int("count", len(removedSet)))
	return nil
}

// scheduleReconcile queues the delayed authoritative block refetch that
// heals any divergence the optimistic patch left (concurrent bookers).
func (s *CalendarSession) scheduleReconcile() {
	s.schedule(reconcileDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Load(ctx); err != nil {
			s.logger.Warn("Reconcile refetch failed", zap.Error(err))
			return
		}
		s.mu.Lock()
		changed := s.onReservationsChanged
		s.mu.Unlock()
		if changed != nil {
			changed()
		}
	})
}
