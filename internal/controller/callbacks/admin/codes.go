package admin

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/callbacktypes"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common"
	"github.com/autoescuela/reservas-bot/internal/model"
)

// CallbackCodeRole selects the role for a new link code: code_role:<role>.
const CallbackCodeRole = "code_role:"

// stateCodeIDs mirrors state.StateCodeIDs for the callbacks side.
const stateCodeIDs callbacktypes.UserState = "code_ids"

// HandleCodeRole continues the /generarcodigo dialog after the admin picked
// a role, asking for the backend ids next.
func HandleCodeRole(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	role := model.Role(strings.TrimPrefix(callback.Data, CallbackCodeRole))
	if role != model.RoleAlumno && role != model.RoleInstructor {
		common.AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	telegramID := callback.From.ID
	h.StateManager.SetState(telegramID, stateCodeIDs)
	h.StateManager.SetData(telegramID, "code_role", string(role))

	common.AnswerCallback(ctx, b, callback.ID, "")

	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}

	var prompt string
	if role == model.RoleAlumno {
		prompt = "Escribe el id de usuario y el id de alumno separados por espacio.\n\nEjemplo: 42 17"
	} else {
		prompt = "Escribe el id de usuario y el id de instructor separados por espacio.\n\nEjemplo: 42 5"
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   prompt,
	})
}
