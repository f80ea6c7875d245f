package model

import "time"

// Role of a linked Telegram account, mirroring the backend's user roles.
type Role string

const (
	RoleAlumno     Role = "alumno"
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
)

// BotUser links a Telegram account to a backend identity. This is the only
// state the bot persists locally; everything else lives behind the REST API.
type BotUser struct {
	ID           int64     `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	Role         Role      `json:"role"`
	BackendID    int64     `json:"backend_id"`    // usuario id on the backend
	AlumnoID     *int64    `json:"alumno_id"`     // set for students
	InstructorID *int64    `json:"instructor_id"` // set for instructors
	LinkedAt     time.Time `json:"linked_at"`
}

func (u *BotUser) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u *BotUser) IsAlumno() bool     { return u.Role == RoleAlumno }
func (u *BotUser) IsInstructor() bool { return u.Role == RoleInstructor }
