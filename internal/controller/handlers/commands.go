package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/app"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/admin"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common/keyboard"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/instructor"
	"github.com/autoescuela/reservas-bot/internal/controller/state"
	"github.com/autoescuela/reservas-bot/internal/model"
)

// HandleStart greets the user and points unlinked accounts at /vincular.
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	from := update.Message.From
	user, err := h.userService.GetByTelegramID(ctx, from.ID)
	if err != nil {
		h.logger.Error("Failed to get user on /start", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "Ocurrió un error. Inténtalo más tarde.")
		return
	}

	if user == nil {
		h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
			"👋 ¡Hola, %s!\n\n"+
				"Soy el bot de reservas de la autoescuela.\n\n"+
				"Para empezar, vincula tu cuenta con el código que te entregó la autoescuela:\n"+
				"/vincular\n\n"+
				"Usa /ayuda para ver todos los comandos.",
			from.FirstName,
		))
		return
	}

	h.userService.Touch(ctx, user, from.Username, from.FirstName)
	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText(user, from.FirstName))
}

func welcomeText(user *model.BotUser, firstName string) string {
	switch {
	case user.IsAdmin():
		return fmt.Sprintf(
			"👋 ¡Hola, %s!\n\n"+
				"Comandos de administrador:\n"+
				"/calendario - Calendario general de bloques\n"+
				"/reservar_alumno - Reservar por un alumno\n"+
				"/hoy - Reservas de hoy\n"+
				"/generarcodigo - Generar código de vinculación\n"+
				"/ayuda - Ayuda",
			firstName,
		)
	case user.IsInstructor():
		return fmt.Sprintf(
			"👋 ¡Hola, %s!\n\n"+
				"Comandos de instructor:\n"+
				"/tickets - Mis tickets de clase\n"+
				"/ayuda - Ayuda",
			firstName,
		)
	default:
		return fmt.Sprintf(
			"👋 ¡Hola, %s!\n\n"+
				"Comandos disponibles:\n"+
				"/calendario - Reservar y cancelar clases\n"+
				"/matricula - Mi matrícula y horas\n"+
				"/asistencias - Historial de asistencias\n"+
				"/ayuda - Ayuda",
			firstName,
		)
	}
}

// HandleAyuda shows the command reference.
func (h *Handlers) HandleAyuda(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Comandos del bot:\n\n" +
		"Para alumnos:\n" +
		"/calendario - Calendario semanal: reservar y cancelar clases\n" +
		"/matricula - Estado de tu matrícula y horas restantes\n" +
		"/asistencias - Historial de asistencias\n\n" +
		"Para instructores:\n" +
		"/tickets - Tickets de clase\n\n" +
		"Para administradores:\n" +
		"/reservar_alumno - Reservar en nombre de un alumno\n" +
		"/hoy - Reservas programadas para hoy\n" +
		"/generarcodigo - Generar código de vinculación\n\n" +
		"Generales:\n" +
		"/vincular - Vincular tu cuenta\n" +
		"/cancelar - Cancelar la operación en curso"

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleVincular starts (or completes, when the code is inline) the account
// linking dialog.
func (h *Handlers) HandleVincular(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	args := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/vincular"))
	if args != "" {
		h.redeemLinkCode(ctx, b, update.Message, args)
		return
	}

	h.stateManager.SetState(update.Message.From.ID, state.StateLinkCode)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🔗 Escribe el código de vinculación que te entregó la autoescuela.\n\n"+
			"Puedes cancelar con /cancelar.")
}

// HandleCancelar aborts the dialog in progress.
func (h *Handlers) HandleCancelar(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "No hay ninguna operación en curso.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "Operación cancelada.")
}

// HandleCalendario opens the weekly calendar: personal for students, the
// global occupancy view for admins.
func (h *Handlers) HandleCalendario(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	chatID := update.Message.Chat.ID
	switch {
	case user.IsAdmin():
		h.openGlobalCalendar(ctx, b, chatID, user.TelegramID)
	case user.IsAlumno() && user.AlumnoID != nil:
		h.openStudentCalendar(ctx, b, chatID, user)
	default:
		h.sendError(ctx, b, chatID, "El calendario está disponible para alumnos y administradores.")
	}
}

// HandleReservarAlumno starts the admin on-behalf booking dialog.
func (h *Handlers) HandleReservarAlumno(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	h.stateManager.SetState(update.Message.From.ID, state.StateAdminMatricula)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"Escribe el número de matrícula del alumno.\n\nPuedes cancelar con /cancelar.")
}

// HandleMatricula shows the student's enrollment card.
func (h *Handlers) HandleMatricula(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAlumno(ctx, b, update)
	if !ok {
		return
	}

	chatID := update.Message.Chat.ID
	enrollments, err := h.backend.EnrollmentsByAlumno(ctx, *user.AlumnoID)
	if err != nil {
		h.logger.Error("Failed to fetch enrollments", zap.Int64("alumno_id", *user.AlumnoID), zap.Error(err))
		h.sendError(ctx, b, chatID, h.backendErrorText(err))
		return
	}
	if len(enrollments) == 0 {
		h.sendMessage(ctx, b, chatID, "No tienes matrículas registradas.")
		return
	}

	var text strings.Builder
	text.WriteString("🎓 Mis matrículas:\n")
	for _, e := range enrollments {
		text.WriteString("\n")
		text.WriteString(formatEnrollment(e))
	}
	h.sendMessage(ctx, b, chatID, text.String())
}

func formatEnrollment(e *model.Enrollment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Matrícula #%d — categoría %s\n", e.ID, e.Categoria)
	if e.TipoContratacion == model.ContractPackage && e.Paquete != nil {
		fmt.Fprintf(&b, "📦 Paquete: %s\n", e.Paquete.Nombre)
	} else {
		b.WriteString("⏱ Contratación por horas\n")
	}
	fmt.Fprintf(&b, "Horas: %d contratadas, %d completadas, %d restantes\n",
		e.TotalHours(), e.HorasCompletadas, e.RemainingHours())
	fmt.Fprintf(&b, "Estado: %s\n", enrollmentStateText(e.EstadoClases))
	fmt.Fprintf(&b, "Fecha límite: %s", e.FechaLimite.String())
	return b.String()
}

func enrollmentStateText(estado string) string {
	switch estado {
	case model.ClassStatePending:
		return "pendiente de iniciar"
	case model.ClassStateInProgress:
		return "en progreso"
	case model.ClassStateCompleted:
		return "completado"
	default:
		return estado
	}
}

// HandleAsistencias shows the student's attendance history.
func (h *Handlers) HandleAsistencias(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAlumno(ctx, b, update)
	if !ok {
		return
	}

	chatID := update.Message.Chat.ID
	attendances, err := h.backend.AttendancesByAlumno(ctx, *user.AlumnoID)
	if err != nil {
		h.logger.Error("Failed to fetch attendances", zap.Int64("alumno_id", *user.AlumnoID), zap.Error(err))
		h.sendError(ctx, b, chatID, h.backendErrorText(err))
		return
	}
	if len(attendances) == 0 {
		h.sendMessage(ctx, b, chatID, "Todavía no tienes asistencias registradas.")
		return
	}

	var text strings.Builder
	text.WriteString("📋 Mis asistencias:\n\n")
	for _, a := range attendances {
		text.WriteString(formatAttendance(a))
		text.WriteString("\n")
	}
	h.sendMessage(ctx, b, chatID, text.String())
}

func formatAttendance(a *model.Attendance) string {
	var when string
	switch {
	case a.Reserva != nil && a.Reserva.Bloque != nil:
		blk := a.Reserva.Bloque
		when = fmt.Sprintf("%s %02d:00", blk.Fecha.String(), int(blk.HoraInicio))
	case a.FechaAsistencia != nil:
		when = a.FechaAsistencia.Format("2006-01-02")
	default:
		when = fmt.Sprintf("clase #%d", a.IDReserva)
	}

	switch {
	case !a.Decided():
		return fmt.Sprintf("⏳ %s — pendiente", when)
	case *a.Asistio:
		return fmt.Sprintf("✅ %s — asistió", when)
	default:
		return fmt.Sprintf("✖️ %s — faltó", when)
	}
}

// HandleHoy shows today's reservations to admins.
func (h *Handlers) HandleHoy(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	chatID := update.Message.Chat.ID
	reservas, err := h.backend.TodayReservations(ctx)
	if err != nil {
		h.logger.Error("Failed to fetch today's reservations", zap.Error(err))
		h.sendError(ctx, b, chatID, h.backendErrorText(err))
		return
	}

	h.sendMessage(ctx, b, chatID, app.FormatTodayDigest(reservas))
}

// HandleTickets lists the instructor's class tickets.
func (h *Handlers) HandleTickets(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireInstructor(ctx, b, update)
	if !ok {
		return
	}

	chatID := update.Message.Chat.ID
	tickets, err := h.backend.TicketsByInstructor(ctx, *user.InstructorID)
	if err != nil {
		h.logger.Error("Failed to fetch tickets", zap.Int64("instructor_id", *user.InstructorID), zap.Error(err))
		h.sendError(ctx, b, chatID, h.backendErrorText(err))
		return
	}

	text, kb := instructor.RenderTicketsPage(tickets, 0)
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send tickets", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// HandleGenerarCodigo starts the admin link-code dialog with a role choice.
func (h *Handlers) HandleGenerarCodigo(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("🎓 Alumno", admin.CallbackCodeRole+string(model.RoleAlumno)),
			keyboard.Button("🚗 Instructor", admin.CallbackCodeRole+string(model.RoleInstructor)),
		).
		Build()

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        "¿Para qué rol es el código de vinculación?",
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send role keyboard", zap.Error(err))
	}
}
