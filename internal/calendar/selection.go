package calendar

import "github.com/autoescuela/reservas-bot/internal/model"

// Mode is the calendar's interaction mode. Values match the original
// frontend's modo strings.
type Mode string

const (
	ModeView    Mode = "vista"
	ModeReserve Mode = "reservar"
	ModeCancel  Mode = "cancelar"
)

// Selection is the ephemeral set of block ids chosen in the current
// reserve/cancel session. Insertion order is kept so confirmations list
// slots in the order the user picked them. Every mode change empties it.
type Selection struct {
	mode Mode
	ids  []int64
}

func NewSelection() *Selection {
	return &Selection{mode: ModeView}
}

func (s *Selection) Mode() Mode { return s.mode }

// SetMode switches the interaction mode and clears the selection,
// regardless of whether the mode actually changed.
func (s *Selection) SetMode(m Mode) {
	s.mode = m
	s.ids = s.ids[:0]
}

// Reset returns to view mode with an empty selection.
func (s *Selection) Reset() {
	s.SetMode(ModeView)
}

func (s *Selection) Contains(blockID int64) bool {
	for _, id := range s.ids {
		if id == blockID {
			return true
		}
	}
	return false
}

func (s *Selection) Count() int { return len(s.ids) }

// IDs returns a copy of the selected block ids in selection order.
func (s *Selection) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// Toggle flips the block's membership. Eligibility only gates adding:
// deselecting an already-picked slot always succeeds, even when the slot has
// since become ineligible (filled up, quota exhausted). The first return
// reports whether the selection changed; when it did not, the denial says
// why.
func (s *Selection) Toggle(b *model.Block, idx *Index, pc Context) (bool, Denial) {
	if s.mode == ModeView {
		return false, DenialNone
	}

	var blockID int64
	if b != nil {
		blockID = b.ID
	}
	if s.Contains(blockID) {
		s.remove(blockID)
		return true, DenialNone
	}

	var ok bool
	var denial Denial
	switch s.mode {
	case ModeReserve:
		ok, denial = CanReserve(b, idx, pc, len(s.ids), false)
	case ModeCancel:
		ok, denial = CanCancel(b, idx, pc)
	}
	if !ok {
		return false, denial
	}
	s.ids = append(s.ids, blockID)
	return true, DenialNone
}

func (s *Selection) remove(blockID int64) {
	for i, id := range s.ids {
		if id == blockID {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}
