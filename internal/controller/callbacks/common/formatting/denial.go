package formatting

import "github.com/autoescuela/reservas-bot/internal/calendar"

// DenialMessage maps an eligibility denial to the message shown to the user.
func DenialMessage(d calendar.Denial) string {
	switch d {
	case calendar.DenialNoBlock:
		return "No hay bloque disponible en este horario."
	case calendar.DenialPast:
		return "Este horario ya pasó."
	case calendar.DenialAdvanceNotice:
		return "Para la categoría A-II las reservas deben hacerse con un día de anticipación."
	case calendar.DenialFull:
		return "Este bloque ya está lleno."
	case calendar.DenialAlreadyReserved:
		return "Ya tienes una reserva en este bloque."
	case calendar.DenialQuota:
		return "No te quedan horas disponibles para reservar."
	case calendar.DenialNoReservation:
		return "No tienes una reserva en este bloque."
	case calendar.DenialAttendanceLocked:
		return "No se puede cancelar: la asistencia ya fue registrada."
	default:
		return ""
	}
}
