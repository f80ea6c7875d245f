package model

// Block is one bookable hour-slot on a specific calendar date (bloque).
// Created and destroyed server-side; the client reads weekly snapshots and
// only touches ReservasActuales as an optimistic local patch.
type Block struct {
	ID               int64     `json:"id"`
	Fecha            Date      `json:"fecha"`
	HoraInicio       HourOfDay `json:"hora_inicio"`
	HoraFin          HourOfDay `json:"hora_fin"`
	CapacidadMax     int       `json:"capacidad_max"`
	ReservasActuales int       `json:"reservas_actuales"`
}

// IsFull reports whether the block has no remaining capacity. The server is
// authoritative; a counter above capacity is still just "full" here.
func (b *Block) IsFull() bool {
	return b.ReservasActuales >= b.CapacidadMax
}
