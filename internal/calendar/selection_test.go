package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autoescuela/reservas-bot/internal/model"
)

func TestSelectionModeSwitchClears(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	b := block(1, model.NewDate(2024, time.March, 7), 9, 2, 0)
	idx := NewIndex([]*model.Block{b}, nil)
	pc := Context{Now: now, QuotaRemaining: 5}

	sel := NewSelection()
	sel.SetMode(ModeReserve)
	sel.Toggle(b, idx, pc)
	assert.Equal(t, 1, sel.Count())

	sel.SetMode(ModeView)
	assert.Equal(t, 0, sel.Count(), "leaving reserve mode drops the selection")

	sel.SetMode(ModeCancel)
	sel.SetMode(ModeCancel)
	assert.Equal(t, 0, sel.Count(), "re-setting the same mode also clears")
}

func TestSelectionToggleAddRemove(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	tomorrow := model.NewDate(2024, time.March, 7)
	b1 := block(1, tomorrow, 9, 2, 0)
	b2 := block(2, tomorrow, 10, 2, 0)
	idx := NewIndex([]*model.Block{b1, b2}, nil)
	pc := Context{Now: now, QuotaRemaining: 5}

	sel := NewSelection()
	sel.SetMode(ModeReserve)

	changed, denial := sel.Toggle(b1, idx, pc)
	assert.True(t, changed)
	assert.Equal(t, DenialNone, denial)

	sel.Toggle(b2, idx, pc)
	assert.Equal(t, []int64{1, 2}, sel.IDs(), "selection keeps pick order")

	changed, denial = sel.Toggle(b1, idx, pc)
	assert.True(t, changed, "deselection is a change, not a denial")
	assert.Equal(t, DenialNone, denial)
	assert.Equal(t, []int64{2}, sel.IDs())
}

// A slot that became ineligible after being picked must still deselect;
// eligibility only gates adding.
func TestSelectionDeselectBypassesEligibility(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	b := block(1, model.NewDate(2024, time.March, 7), 9, 2, 1)
	idx := NewIndex([]*model.Block{b}, nil)
	pc := Context{Now: now, QuotaRemaining: 5}

	sel := NewSelection()
	sel.SetMode(ModeReserve)
	changed, _ := sel.Toggle(b, idx, pc)
	assert.True(t, changed)

	// Another booker takes the last seat while the slot sits selected.
	b.ReservasActuales = 2

	changed, denial := sel.Toggle(b, idx, pc)
	assert.True(t, changed)
	assert.Equal(t, DenialNone, denial)
	assert.Equal(t, 0, sel.Count())
}

func TestSelectionViewModeIgnoresToggle(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	b := block(1, model.NewDate(2024, time.March, 7), 9, 2, 0)
	idx := NewIndex([]*model.Block{b}, nil)
	pc := Context{Now: now, QuotaRemaining: 5}

	sel := NewSelection()
	changed, denial := sel.Toggle(b, idx, pc)
	assert.False(t, changed)
	assert.Equal(t, DenialNone, denial)
	assert.Equal(t, 0, sel.Count())
}

// Admin quota cap: with 2 remaining hours the third pick is denied and the
// set stays at size 2, but the already-picked slots remain removable.
func TestSelectionAdminQuotaCap(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	tomorrow := model.NewDate(2024, time.March, 7)
	b1 := block(1, tomorrow, 9, 2, 0)
	b2 := block(2, tomorrow, 10, 2, 0)
	b3 := block(3, tomorrow, 11, 2, 0)
	idx := NewIndex([]*model.Block{b1, b2, b3}, nil)
	pc := Context{Now: now, AdminMode: true, QuotaRemaining: 2}

	sel := NewSelection()
	sel.SetMode(ModeReserve)
	sel.Toggle(b1, idx, pc)
	sel.Toggle(b2, idx, pc)

	changed, denial := sel.Toggle(b3, idx, pc)
	assert.False(t, changed)
	assert.Equal(t, DenialQuota, denial)
	assert.Equal(t, []int64{1, 2}, sel.IDs())

	changed, denial = sel.Toggle(b1, idx, pc)
	assert.True(t, changed, "deselection still works at the limit")
	assert.Equal(t, DenialNone, denial)
	assert.Equal(t, []int64{2}, sel.IDs())
}

func TestSelectionIDsReturnsCopy(t *testing.T) {
	now := time.Date(2024, time.March, 6, 8, 0, 0, 0, time.Local)
	b := block(1, model.NewDate(2024, time.March, 7), 9, 2, 0)
	idx := NewIndex([]*model.Block{b}, nil)
	pc := Context{Now: now, QuotaRemaining: 5}

	sel := NewSelection()
	sel.SetMode(ModeReserve)
	sel.Toggle(b, idx, pc)

	ids := sel.IDs()
	ids[0] = 999
	assert.Equal(t, []int64{1}, sel.IDs())
}
