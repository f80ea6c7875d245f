package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/controller/state"
	"github.com/autoescuela/reservas-bot/internal/model"
	"github.com/autoescuela/reservas-bot/internal/service"
)

// HandleTextMessage continues whichever dialog the user is in. Messages
// outside a dialog are ignored.
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Commands are handled by their own handlers.
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	switch h.stateManager.GetState(telegramID) {
	case state.StateLinkCode:
		h.redeemLinkCode(ctx, b, update.Message, update.Message.Text)
	case state.StateCodeIDs:
		h.handleCodeIDsStep(ctx, b, update.Message)
	case state.StateAdminMatricula:
		h.handleAdminMatriculaStep(ctx, b, update.Message)
	}
}

// redeemLinkCode finishes the /vincular flow.
func (h *Handlers) redeemLinkCode(ctx context.Context, b *bot.Bot, msg *models.Message, rawCode string) {
	from := msg.From
	h.stateManager.ClearState(from.ID)

	user, err := h.userService.RedeemLinkCode(ctx, from.ID, from.Username, from.FirstName, rawCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyLinked):
			h.sendError(ctx, b, msg.Chat.ID, "Tu cuenta ya está vinculada.")
		case errors.Is(err, service.ErrCodeNotFound):
			h.sendError(ctx, b, msg.Chat.ID, "Código no válido. Revisa que esté bien escrito.")
		case errors.Is(err, service.ErrCodeUsed):
			h.sendError(ctx, b, msg.Chat.ID, "Este código ya fue utilizado.")
		default:
			h.logger.Error("Failed to redeem link code", zap.Int64("telegram_id", from.ID), zap.Error(err))
			h.sendError(ctx, b, msg.Chat.ID, "Ocurrió un error. Inténtalo más tarde.")
		}
		return
	}

	h.sendMessage(ctx, b, msg.Chat.ID,
		"✅ ¡Cuenta vinculada!\n\n"+welcomeText(user, from.FirstName))
}

// handleCodeIDsStep finishes the /generarcodigo flow: the admin typed the
// backend ids for the new code.
func (h *Handlers) handleCodeIDsStep(ctx context.Context, b *bot.Bot, msg *models.Message) {
	telegramID := msg.From.ID

	roleValue, ok := h.stateManager.GetData(telegramID, "code_role")
	if !ok {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, msg.Chat.ID, "El diálogo expiró. Empieza de nuevo con /generarcodigo.")
		return
	}
	role := model.Role(roleValue.(string))

	fields := strings.Fields(msg.Text)
	if len(fields) != 2 {
		h.sendError(ctx, b, msg.Chat.ID, "Formato no válido. Escribe dos números separados por espacio, por ejemplo: 42 17")
		return
	}
	backendID, err1 := strconv.ParseInt(fields[0], 10, 64)
	entityID, err2 := strconv.ParseInt(fields[1], 10, 64)
	if err1 != nil || err2 != nil {
		h.sendError(ctx, b, msg.Chat.ID, "Formato no válido. Escribe dos números separados por espacio, por ejemplo: 42 17")
		return
	}

	admin, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil || admin == nil || !admin.IsAdmin() {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, msg.Chat.ID, "Solo los administradores pueden generar códigos.")
		return
	}

	code, err := h.userService.IssueLinkCode(ctx, admin, role, backendID, entityID)
	if err != nil {
		h.logger.Error("Failed to issue link code", zap.Error(err))
		h.sendError(ctx, b, msg.Chat.ID, "No se pudo generar el código. Inténtalo más tarde.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, msg.Chat.ID, fmt.Sprintf(
		"🔑 Código generado: %s\n\n"+
			"Entrégalo al usuario; lo canjea con /vincular. El código es de un solo uso.",
		code.Code,
	))
}

// handleAdminMatriculaStep finishes the /reservar_alumno flow: the admin
// typed the enrollment number to book against.
func (h *Handlers) handleAdminMatriculaStep(ctx context.Context, b *bot.Bot, msg *models.Message) {
	telegramID := msg.From.ID

	matriculaID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil {
		h.sendError(ctx, b, msg.Chat.ID, "Escribe solo el número de matrícula, por ejemplo: 17")
		return
	}

	enrollment, fetchErr := h.backend.EnrollmentByID(ctx, matriculaID)
	if fetchErr != nil {
		h.logger.Error("Failed to fetch enrollment", zap.Int64("matricula_id", matriculaID), zap.Error(fetchErr))
		h.sendError(ctx, b, msg.Chat.ID, h.backendErrorText(fetchErr))
		return
	}
	if !enrollment.Active() {
		h.sendError(ctx, b, msg.Chat.ID, "Esa matrícula ya no acepta reservas.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.openAdminCalendar(ctx, b, msg.Chat.ID, telegramID, enrollment)
}
