package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/model"
)

// TodayLister is the slice of the backend client the scheduler needs.
type TodayLister interface {
	TodayReservations(ctx context.Context) ([]*model.Reservation, error)
}

// DigestSender delivers a plain-text message to a Telegram chat.
type DigestSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Scheduler runs background jobs. Currently a single job: a morning digest
// of today's reservations sent to the configured admin accounts.
type Scheduler struct {
	backend  TodayLister
	sender   DigestSender
	adminIDs []int64
	logger   *zap.Logger
	stopChan chan struct{}
}

func NewScheduler(backend TodayLister, sender DigestSender, adminIDs []int64, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		backend:  backend,
		sender:   sender,
		adminIDs: adminIDs,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background jobs.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")
	go s.runDailyDigest(ctx)
}

// Stop halts the background jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// digestHour is the local hour at which the admin digest goes out.
const digestHour = 7

func (s *Scheduler) runDailyDigest(ctx context.Context) {
	for {
		timer := time.NewTimer(untilNextRun(time.Now(), digestHour))
		select {
		case <-timer.C:
			s.sendDigest(ctx)
		case <-s.stopChan:
			timer.Stop()
			s.logger.Info("Daily digest task stopped")
			return
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Daily digest task cancelled")
			return
		}
	}
}

// untilNextRun computes the wait until the next occurrence of hour o'clock.
func untilNextRun(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (s *Scheduler) sendDigest(ctx context.Context) {
	if len(s.adminIDs) == 0 {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reservas, err := s.backend.TodayReservations(reqCtx)
	if err != nil {
		s.logger.Error("Failed to fetch today's reservations for digest", zap.Error(err))
		return
	}

	text := FormatTodayDigest(reservas)
	for _, chatID := range s.adminIDs {
		if err := s.sender.SendText(ctx, chatID, text); err != nil {
			s.logger.Error("Failed to send daily digest",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}

	s.logger.Info("Daily digest sent", zap.Int("reservations", len(reservas)))
}

// FormatTodayDigest renders the admin morning summary.
func FormatTodayDigest(reservas []*model.Reservation) string {
	if len(reservas) == 0 {
		return "📋 Hoy no hay reservas programadas."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Reservas de hoy (%d):\n", len(reservas))
	for _, r := range reservas {
		if r.Bloque == nil {
			continue
		}
		fmt.Fprintf(&b, "• %02d:00 — matrícula #%d\n", int(r.Bloque.HoraInicio), r.IDMatricula)
	}
	return b.String()
}
