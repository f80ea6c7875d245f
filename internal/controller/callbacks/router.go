package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/admin"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/callbacktypes"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/instructor"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/student"
)

// Route dispatches a callback query to its handler.
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	switch {
	// ===== Calendar screen =====
	case data == common.CallbackWeekPrev:
		student.HandleWeekNav(ctx, b, callback, h, -1)
	case data == common.CallbackWeekNext:
		student.HandleWeekNav(ctx, b, callback, h, +1)
	case strings.HasPrefix(data, common.CallbackMode):
		student.HandleMode(ctx, b, callback, h)
	case strings.HasPrefix(data, common.CallbackSlot):
		student.HandleSlot(ctx, b, callback, h)
	case data == common.CallbackConfirm:
		student.HandleConfirm(ctx, b, callback, h)
	case data == common.CallbackWeekImage:
		student.HandleWeekImage(ctx, b, callback, h)
	case data == common.CallbackExit:
		student.HandleExit(ctx, b, callback, h)

	// ===== Admin: link code issuing =====
	case strings.HasPrefix(data, admin.CallbackCodeRole):
		admin.HandleCodeRole(ctx, b, callback, h)

	// ===== Instructor: ticket list =====
	case strings.HasPrefix(data, instructor.CallbackTicketsPage):
		instructor.HandleTicketsPage(ctx, b, callback, h)

	case data == common.CallbackNoop:
		common.AnswerCallback(ctx, b, callback.ID, "")

	default:
		h.Logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		common.AnswerCallback(ctx, b, callback.ID, "Comando desconocido")
	}
}
