package student

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/api"
	"github.com/autoescuela/reservas-bot/internal/calendar"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/callbacktypes"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common/formatting"
	"github.com/autoescuela/reservas-bot/internal/service"
)

// session resolves the caller's calendar session, alerting when none exists
// (bot restarted, or the calendar was closed).
func session(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) *service.CalendarSession {
	s := h.Sessions.Get(callback.From.ID)
	if s == nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, "La sesión del calendario expiró. Abre el calendario de nuevo con /calendario.")
	}
	return s
}

// HandleWeekNav moves the visible week window.
func HandleWeekNav(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler, delta int) {
	s := session(ctx, b, callback, h)
	if s == nil {
		return
	}

	if !s.CanNavigate(delta) {
		common.AnswerCallback(ctx, b, callback.ID, "No puedes ir más lejos.")
		return
	}

	if err := s.Navigate(ctx, delta); err != nil {
		h.Logger.Error("Failed to navigate week", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, apiErrorText(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "")
	RedrawCalendar(ctx, b, callback, h, s)
}

// HandleMode switches between view, reserve and cancel modes. Any pending
// selection is discarded on switch.
func HandleMode(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	s := session(ctx, b, callback, h)
	if s == nil {
		return
	}

	mode := calendar.Mode(strings.TrimPrefix(callback.Data, common.CallbackMode))
	switch mode {
	case calendar.ModeView, calendar.ModeReserve, calendar.ModeCancel:
	default:
		common.AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	if mode != calendar.ModeView && s.Profile().GlobalView {
		common.AnswerCallbackAlert(ctx, b, callback.ID, "El calendario general es solo de consulta.")
		return
	}
	// Stale keyboards can still offer reserve mode after the quota ran out.
	if mode == calendar.ModeReserve && !s.Profile().AdminMode && s.Quota() <= 0 {
		common.AnswerCallbackAlert(ctx, b, callback.ID, formatting.DenialMessage(calendar.DenialQuota))
		return
	}

	s.SetMode(mode)
	common.AnswerCallback(ctx, b, callback.ID, "")
	RedrawCalendar(ctx, b, callback, h, s)
}

// HandleSlot toggles a slot in the current selection.
func HandleSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	s := session(ctx, b, callback, h)
	if s == nil {
		return
	}

	blockID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		h.Logger.Error("Bad slot callback", zap.String("data", callback.Data), zap.Error(err))
		common.AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	changed, denial := s.ToggleSlot(blockID)
	if !changed {
		if denial != calendar.DenialNone {
			common.AnswerCallbackAlert(ctx, b, callback.ID, denialText(denial))
		} else {
			common.AnswerCallback(ctx, b, callback.ID, "")
		}
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "")
	RedrawCalendar(ctx, b, callback, h, s)
}

// HandleConfirm applies the pending selection against the backend.
func HandleConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	s := session(ctx, b, callback, h)
	if s == nil {
		return
	}

	result, err := s.Confirm(ctx)
	if err != nil {
		h.Logger.Warn("Confirm failed", zap.Int64("telegram_id", callback.From.ID), zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, apiErrorText(err))
		RedrawCalendar(ctx, b, callback, h, s)
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, confirmText(result))
	RedrawCalendar(ctx, b, callback, h, s)
}

// HandleExit closes the calendar and drops the session.
func HandleExit(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	h.Sessions.Delete(callback.From.ID)
	common.AnswerCallback(ctx, b, callback.ID, "")

	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}
	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      "📅 Calendario cerrado. Usa /calendario para abrirlo de nuevo.",
	})
}

// HandleWeekImage sends the current week rendered as an image.
func HandleWeekImage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	s := session(ctx, b, callback, h)
	if s == nil {
		return
	}

	img, err := common.GenerateWeekImage(s.WeekDates(), s.Grid(), time.Now())
	if err != nil {
		h.Logger.Error("Failed to render week image", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, "No se pudo generar la imagen.")
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "")
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}
	b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: msg.Chat.ID,
		Photo:  &models.InputFileUpload{Filename: "semana.png", Data: bytes.NewReader(img)},
	})
}

// RedrawCalendar re-renders the calendar onto the message the callback
// came from.
func RedrawCalendar(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler, s *service.CalendarSession) {
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}
	text, kb := common.CalendarMessage(s, common.CalendarTitle(s.Profile()))
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		// Telegram rejects edits that change nothing; those are harmless.
		h.Logger.Debug("Calendar redraw skipped", zap.Error(err))
	}
}

func confirmText(result *service.ConfirmResult) string {
	if result.Mode == calendar.ModeCancel {
		if result.Count == 1 {
			return "Reserva cancelada."
		}
		return "Reservas canceladas."
	}
	if result.Count == 1 {
		return "Reserva creada."
	}
	return "Reservas creadas."
}

func apiErrorText(err error) string {
	if apiErr, ok := api.AsAPIError(err); ok {
		return apiErr.UserMessage()
	}
	return "Error de conexión con el servidor. El calendario se recargó."
}

func denialText(d calendar.Denial) string {
	return formatting.DenialMessage(d)
}
