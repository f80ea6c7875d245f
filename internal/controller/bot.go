package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/api"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks"
	"github.com/autoescuela/reservas-bot/internal/controller/handlers"
	"github.com/autoescuela/reservas-bot/internal/controller/state"
	"github.com/autoescuela/reservas-bot/internal/service"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	backend *api.Client,
	sessions *service.Sessions,
	logger *zap.Logger,
) *BotController {
	stateManager := state.NewManager()

	cmdHandlers := handlers.NewHandlers(
		userService,
		backend,
		sessions,
		stateManager,
		logger,
	)

	callbackHandler := callbacks.NewHandler(
		userService,
		backend,
		sessions,
		state.NewAdapter(stateManager),
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers wires every command and callback handler into the bot.
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/ayuda", bot.MatchTypeExact, c.handlers.HandleAyuda)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/vincular", bot.MatchTypePrefix, c.handlers.HandleVincular)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancelar", bot.MatchTypeExact, c.handlers.HandleCancelar)

	// Student commands.
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/calendario", bot.MatchTypeExact, c.handlers.HandleCalendario)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/matricula", bot.MatchTypeExact, c.handlers.HandleMatricula)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/asistencias", bot.MatchTypeExact, c.handlers.HandleAsistencias)

	// Instructor commands.
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/tickets", bot.MatchTypeExact, c.handlers.HandleTickets)

	// Admin commands.
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reservar_alumno", bot.MatchTypeExact, c.handlers.HandleReservarAlumno)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/hoy", bot.MatchTypeExact, c.handlers.HandleHoy)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/generarcodigo", bot.MatchTypeExact, c.handlers.HandleGenerarCodigo)

	// Text messages continue multi-step dialogs.
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Inline keyboard presses.
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands publishes the command menu.
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Empezar"},
		{Command: "calendario", Description: "📅 Calendario semanal de clases"},
		{Command: "matricula", Description: "🎓 Mi matrícula y horas"},
		{Command: "asistencias", Description: "📋 Mis asistencias"},
		{Command: "tickets", Description: "🎫 Tickets de clase (instructor)"},
		{Command: "hoy", Description: "🗓 Reservas de hoy (admin)"},
		{Command: "reservar_alumno", Description: "📝 Reservar por un alumno (admin)"},
		{Command: "generarcodigo", Description: "🔑 Generar código de vinculación (admin)"},
		{Command: "vincular", Description: "🔗 Vincular mi cuenta"},
		{Command: "ayuda", Description: "❓ Ayuda"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// SendText sends a plain message; used by background jobs.
func (c *BotController) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// Start runs the long-polling loop until the context is cancelled.
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot")
	c.bot.Start(ctx)
	return nil
}
