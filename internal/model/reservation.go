package model

import "time"

// Attendance is the optional sub-record set by backend attendance workflows.
// Asistio is tri-state: nil (undecided), true, false. Once decided the owning
// reservation is immutable from the calendar's point of view.
type Attendance struct {
	ID              int64        `json:"id"`
	IDReserva       int64        `json:"id_reserva"`
	Asistio         *bool        `json:"asistio"`
	FechaAsistencia *time.Time   `json:"fecha_asistencia"`
	Reserva         *Reservation `json:"reserva,omitempty"`
}

// Decided reports whether the attendance flag has been set either way.
func (a *Attendance) Decided() bool {
	return a != nil && a.Asistio != nil
}

// Reservation is one enrollment's claim on a Block (reserva). Never mutated
// in place by the client: created by the reserve flow, destroyed by cancel.
type Reservation struct {
	ID           int64       `json:"id"`
	IDBloque     int64       `json:"id_bloque"`
	IDMatricula  int64       `json:"id_matricula"`
	FechaReserva *time.Time  `json:"fecha_reserva"`
	Bloque       *Block      `json:"bloque,omitempty"`
	Asistencia   *Attendance `json:"asistencia,omitempty"`
}

// AttendanceDecided reports whether this reservation carries a decided
// attendance flag, which locks it against cancellation.
func (r *Reservation) AttendanceDecided() bool {
	return r.Asistencia.Decided()
}
