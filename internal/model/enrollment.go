package model

// Enrollment states as the backend reports them (estado_clases).
const (
	ClassStatePending    = "pendiente"
	ClassStateInProgress = "en_progreso"
	ClassStateCompleted  = "completado"
)

// Contracting types (tipo_contratacion).
const (
	ContractPackage = "paquete"
	ContractHourly  = "por_hora"
)

// CategoryAII is the motorcycle license category with the one-day
// advance-notice booking rule.
const CategoryAII = "A-II"

// Package is a pre-priced bundle of class hours (paquete).
type Package struct {
	ID         int64  `json:"id"`
	Nombre     string `json:"nombre"`
	HorasTotal int    `json:"horas_total"`
}

// Enrollment is the student's active contract (matricula). It owns
// reservations and carries the remaining-hours quota enforced client-side
// during slot selection.
type Enrollment struct {
	ID               int64    `json:"id"`
	IDAlumno         int64    `json:"id_alumno"`
	Categoria        string   `json:"categoria"`
	TipoContratacion string   `json:"tipo_contratacion"`
	HorasContratadas int      `json:"horas_contratadas"`
	HorasCompletadas int      `json:"horas_completadas"`
	EstadoClases     string   `json:"estado_clases"`
	FechaLimite      Date     `json:"fecha_limite"`
	Paquete          *Package `json:"paquete,omitempty"`
}

// TotalHours resolves the contracted hour count from either the package or
// the hourly contract.
func (e *Enrollment) TotalHours() int {
	if e.TipoContratacion == ContractPackage && e.Paquete != nil {
		return e.Paquete.HorasTotal
	}
	return e.HorasContratadas
}

// RemainingHours is the client-side quota for new reservations.
func (e *Enrollment) RemainingHours() int {
	return e.TotalHours() - e.HorasCompletadas
}

// Active reports whether the enrollment still accepts reservations.
func (e *Enrollment) Active() bool {
	return e.EstadoClases == ClassStatePending || e.EstadoClases == ClassStateInProgress
}
