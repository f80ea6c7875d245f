package model

import "time"

// LinkCode is a one-time code an admin hands out so a student or instructor
// can bind their Telegram account to their backend identity.
type LinkCode struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	Role         Role       `json:"role"`
	BackendID    int64      `json:"backend_id"`
	AlumnoID     *int64     `json:"alumno_id"`
	InstructorID *int64     `json:"instructor_id"`
	CreatedBy    int64      `json:"created_by"` // bot user id of the issuing admin
	UsedBy       *int64     `json:"used_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UsedAt       *time.Time `json:"used_at"`
}

// Usable reports whether the code can still be redeemed.
func (c *LinkCode) Usable() bool {
	return c.UsedBy == nil
}
