package instructor

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/callbacktypes"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common/keyboard"
	"github.com/autoescuela/reservas-bot/internal/model"
)

// CallbackTicketsPage pages through the ticket list: tickets_page:<n>.
const CallbackTicketsPage = "tickets_page:"

const ticketsPerPage = 8

// RenderTicketsPage renders one page of the instructor's ticket list.
func RenderTicketsPage(tickets []*model.Ticket, page int) (string, *models.InlineKeyboardMarkup) {
	if len(tickets) == 0 {
		return "🎫 No tienes tickets de clase todavía.", keyboard.Empty()
	}

	totalPages := (len(tickets) + ticketsPerPage - 1) / ticketsPerPage
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	start := page * ticketsPerPage
	end := start + ticketsPerPage
	if end > len(tickets) {
		end = len(tickets)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "🎫 Mis tickets de clase (%d):\n\n", len(tickets))
	for _, t := range tickets[start:end] {
		fmt.Fprintf(&text, "• %s %02d:00 — %s", t.Fecha.String(), int(t.HoraInicio), t.Alumno)
		if t.Placa != "" {
			fmt.Fprintf(&text, " (placa %s)", t.Placa)
		}
		text.WriteString("\n")
	}

	kb := keyboard.NewBuilder().
		AddPagination(CallbackTicketsPage, page, totalPages).
		Build()
	return text.String(), kb
}

// HandleTicketsPage re-fetches the list and shows the requested page.
func HandleTicketsPage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	page, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	user, err := h.UserService.GetByTelegramID(ctx, callback.From.ID)
	if err != nil || user == nil || !user.IsInstructor() || user.InstructorID == nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, "Solo los instructores pueden ver tickets.")
		return
	}

	tickets, err := h.Backend.TicketsByInstructor(ctx, *user.InstructorID)
	if err != nil {
		h.Logger.Error("Failed to fetch tickets", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, "No se pudo cargar la lista de tickets.")
		return
	}

	text, kb := RenderTicketsPage(tickets, int(page))
	common.AnswerCallback(ctx, b, callback.ID, "")

	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}
	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.Logger.Debug("Tickets redraw skipped", zap.Error(err))
	}
}
