package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/model"
)

// requireUser resolves the linked account behind a message, prompting for
// /vincular when there is none.
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.BotUser, bool) {
	if update.Message == nil {
		return nil, false
	}

	from := update.Message.From
	user, err := h.userService.GetByTelegramID(ctx, from.ID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "Ocurrió un error. Inténtalo más tarde.")
		return nil, false
	}

	if user == nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"Tu cuenta no está vinculada todavía.\n\nUsa /vincular con el código que te entregó la autoescuela.")
		return nil, false
	}

	h.userService.Touch(ctx, user, from.Username, from.FirstName)
	return user, true
}

// requireAlumno requires a linked student account.
func (h *Handlers) requireAlumno(ctx context.Context, b *bot.Bot, update *models.Update) (*model.BotUser, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}
	if !user.IsAlumno() || user.AlumnoID == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "Este comando es solo para alumnos.")
		return nil, false
	}
	return user, true
}

// requireAdmin requires a linked admin account.
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) (*model.BotUser, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin() {
		h.sendError(ctx, b, update.Message.Chat.ID, "Este comando es solo para administradores.")
		return nil, false
	}
	return user, true
}

// requireInstructor requires a linked instructor account.
func (h *Handlers) requireInstructor(ctx context.Context, b *bot.Bot, update *models.Update) (*model.BotUser, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}
	if !user.IsInstructor() || user.InstructorID == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "Este comando es solo para instructores.")
		return nil, false
	}
	return user, true
}

// sendError sends an error message, logging the delivery failure if any.
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "❌ " + text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// sendMessage sends a plain message, logging the delivery failure if any.
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
