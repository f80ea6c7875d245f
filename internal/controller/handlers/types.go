package handlers

import (
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/api"
	"github.com/autoescuela/reservas-bot/internal/controller/state"
	"github.com/autoescuela/reservas-bot/internal/service"
)

// Handlers carries the dependencies of all command handlers.
type Handlers struct {
	userService  *service.UserService
	backend      *api.Client
	sessions     *service.Sessions
	stateManager *state.Manager
	logger       *zap.Logger
}

func NewHandlers(
	userService *service.UserService,
	backend *api.Client,
	sessions *service.Sessions,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:  userService,
		backend:      backend,
		sessions:     sessions,
		stateManager: stateManager,
		logger:       logger,
	}
}
