package calendar

import "github.com/autoescuela/reservas-bot/internal/model"

type slotKey struct {
	date string
	hour int
}

// Index gives O(1) lookups over a week snapshot: (date, hour) to block, and
// block id to the caller's own reservation. Rebuild it whenever the backing
// slices change; it holds pointers into them, never copies.
type Index struct {
	blocks       map[slotKey]*model.Block
	reservations map[int64]*model.Reservation
}

func NewIndex(blocks []*model.Block, reservations []*model.Reservation) *Index {
	idx := &Index{
		blocks:       make(map[slotKey]*model.Block, len(blocks)),
		reservations: make(map[int64]*model.Reservation, len(reservations)),
	}
	for _, b := range blocks {
		idx.blocks[slotKey{b.Fecha.String(), int(b.HoraInicio)}] = b
	}
	for _, r := range reservations {
		idx.reservations[r.IDBloque] = r
	}
	return idx
}

// BlockAt returns the block covering the given date and start hour, or nil.
func (idx *Index) BlockAt(date model.Date, hour int) *model.Block {
	return idx.blocks[slotKey{date.String(), hour}]
}

// ReservationOn returns the caller's reservation on the block, or nil.
func (idx *Index) ReservationOn(blockID int64) *model.Reservation {
	return idx.reservations[blockID]
}

// HasReservationOn reports whether the caller already holds a reservation
// on the block.
func (idx *Index) HasReservationOn(blockID int64) bool {
	_, ok := idx.reservations[blockID]
	return ok
}
