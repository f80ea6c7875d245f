package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/api"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common"
	"github.com/autoescuela/reservas-bot/internal/model"
	"github.com/autoescuela/reservas-bot/internal/service"
)

// openStudentCalendar opens the personal calendar against the student's
// active enrollment.
func (h *Handlers) openStudentCalendar(ctx context.Context, b *bot.Bot, chatID int64, user *model.BotUser) {
	enrollment, ok := h.activeEnrollment(ctx, b, chatID, *user.AlumnoID)
	if !ok {
		return
	}

	profile := service.Profile{
		AlumnoID:    user.AlumnoID,
		MatriculaID: enrollment.ID,
		Categoria:   enrollment.Categoria,
		Quota:       enrollment.RemainingHours(),
	}
	h.openCalendar(ctx, b, chatID, user.TelegramID, profile)
}

// openAdminCalendar opens the on-behalf booking calendar for one enrollment.
func (h *Handlers) openAdminCalendar(ctx context.Context, b *bot.Bot, chatID, telegramID int64, enrollment *model.Enrollment) {
	alumnoID := enrollment.IDAlumno
	profile := service.Profile{
		AdminMode:   true,
		AlumnoID:    &alumnoID,
		MatriculaID: enrollment.ID,
		Categoria:   enrollment.Categoria,
		Quota:       enrollment.RemainingHours(),
	}
	h.openCalendar(ctx, b, chatID, telegramID, profile)
}

// openGlobalCalendar opens the read-only occupancy view for admins.
func (h *Handlers) openGlobalCalendar(ctx context.Context, b *bot.Bot, chatID, telegramID int64) {
	profile := service.Profile{
		AdminMode:  true,
		GlobalView: true,
	}
	h.openCalendar(ctx, b, chatID, telegramID, profile)
}

func (h *Handlers) openCalendar(ctx context.Context, b *bot.Bot, chatID, telegramID int64, profile service.Profile) {
	s := service.NewCalendarSession(h.backend, profile, h.logger)
	if err := s.Load(ctx); err != nil {
		h.logger.Error("Failed to load calendar", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, h.backendErrorText(err))
		return
	}
	h.sessions.Put(telegramID, s)

	text, kb := common.CalendarMessage(s, common.CalendarTitle(profile))
	msg, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send calendar", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sessions.Delete(telegramID)
		return
	}

	// Redraw the message when a reconciliation pass lands.
	messageID := msg.ID
	s.SetOnReservationsChanged(func() {
		redrawCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if h.sessions.Get(telegramID) != s {
			return // calendar was closed or replaced meanwhile
		}
		text, kb := common.CalendarMessage(s, common.CalendarTitle(s.Profile()))
		_, err := b.EditMessageText(redrawCtx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ReplyMarkup: kb,
		})
		if err != nil {
			h.logger.Debug("Calendar redraw skipped", zap.Error(err))
		}
	})
}

// activeEnrollment fetches the student's enrollments and picks the one that
// still accepts reservations.
func (h *Handlers) activeEnrollment(ctx context.Context, b *bot.Bot, chatID, alumnoID int64) (*model.Enrollment, bool) {
	enrollments, err := h.backend.EnrollmentsByAlumno(ctx, alumnoID)
	if err != nil {
		h.logger.Error("Failed to fetch enrollments", zap.Int64("alumno_id", alumnoID), zap.Error(err))
		h.sendError(ctx, b, chatID, h.backendErrorText(err))
		return nil, false
	}

	for _, e := range enrollments {
		if e.Active() {
			return e, true
		}
	}

	h.sendError(ctx, b, chatID, "No tienes una matrícula activa. Acércate a la autoescuela para matricularte.")
	return nil, false
}

func (h *Handlers) backendErrorText(err error) string {
	if apiErr, ok := api.AsAPIError(err); ok {
		return apiErr.UserMessage()
	}
	return "No se pudo conectar con el servidor. Inténtalo más tarde."
}
