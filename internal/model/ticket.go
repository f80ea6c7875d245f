package model

import "time"

// Ticket is a class ticket generated by the backend when attendance is taken.
// The bot only lists them for instructors.
type Ticket struct {
	ID           int64     `json:"id"`
	IDReserva    int64     `json:"id_reserva"`
	IDInstructor int64     `json:"id_instructor"`
	Alumno       string    `json:"alumno"`
	Fecha        Date      `json:"fecha"`
	HoraInicio   HourOfDay `json:"hora_inicio"`
	Placa        string    `json:"placa"`
	CreadoEn     time.Time `json:"creado_en"`
}
