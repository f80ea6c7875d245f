package callbacktypes

import (
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/api"
	"github.com/autoescuela/reservas-bot/internal/service"
)

// UserState mirrors the dialog state kept by the state manager.
type UserState string

// StateManager is the dialog-state surface callback handlers need.
type StateManager interface {
	ClearState(telegramID int64)
	GetState(telegramID int64) UserState
	SetState(telegramID int64, state UserState)
	SetData(telegramID int64, key string, value interface{})
	GetData(telegramID int64, key string) (interface{}, bool)
	GetAllData(telegramID int64) map[string]interface{}
}

// Handler carries the shared dependencies for all callback handlers.
type Handler struct {
	UserService  *service.UserService
	Backend      *api.Client
	Sessions     *service.Sessions
	StateManager StateManager
	Logger       *zap.Logger
}
