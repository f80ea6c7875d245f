package callbacks

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/api"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/callbacktypes"
	"github.com/autoescuela/reservas-bot/internal/service"
)

// Handler wraps callbacktypes.Handler with the top-level dispatch method.
type Handler struct {
	*callbacktypes.Handler
}

// StateManager is re-exported for the controller wiring.
type StateManager = callbacktypes.StateManager

// NewHandler builds the callback handler with its dependencies.
func NewHandler(
	userService *service.UserService,
	backend *api.Client,
	sessions *service.Sessions,
	stateManager callbacktypes.StateManager,
	logger *zap.Logger,
) *Handler {
	inner := &callbacktypes.Handler{
		UserService:  userService,
		Backend:      backend,
		Sessions:     sessions,
		StateManager: stateManager,
		Logger:       logger,
	}
	return &Handler{Handler: inner}
}

// HandleCallbackQuery is the entry point for all inline button presses.
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.Logger.Info("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h.Handler)
}
