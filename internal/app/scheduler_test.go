package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autoescuela/reservas-bot/internal/model"
)

func TestUntilNextRun(t *testing.T) {
	loc := time.Local

	// Before the hour: wait until today's run.
	now := time.Date(2024, time.March, 6, 5, 30, 0, 0, loc)
	assert.Equal(t, 90*time.Minute, untilNextRun(now, 7))

	// After the hour: roll over to tomorrow.
	now = time.Date(2024, time.March, 6, 8, 0, 0, 0, loc)
	assert.Equal(t, 23*time.Hour, untilNextRun(now, 7))

	// Exactly on the hour counts as passed.
	now = time.Date(2024, time.March, 6, 7, 0, 0, 0, loc)
	assert.Equal(t, 24*time.Hour, untilNextRun(now, 7))
}

func TestFormatTodayDigest(t *testing.T) {
	assert.Equal(t, "📋 Hoy no hay reservas programadas.", FormatTodayDigest(nil))

	reservas := []*model.Reservation{
		{IDMatricula: 3, Bloque: &model.Block{HoraInicio: 9}},
		{IDMatricula: 8, Bloque: &model.Block{HoraInicio: 15}},
		{IDMatricula: 4}, // block not embedded, skipped
	}
	got := FormatTodayDigest(reservas)
	assert.Contains(t, got, "Reservas de hoy (3)")
	assert.Contains(t, got, "• 09:00 — matrícula #3")
	assert.Contains(t, got, "• 15:00 — matrícula #8")
	assert.NotContains(t, got, "#4")
}

type digestBackend struct {
	reservas []*model.Reservation
	err      error
}

func (d *digestBackend) TodayReservations(ctx context.Context) ([]*model.Reservation, error) {
	return d.reservas, d.err
}

type digestRecorder struct {
	chatIDs []int64
	texts   []string
}

func (d *digestRecorder) SendText(ctx context.Context, chatID int64, text string) error {
	d.chatIDs = append(d.chatIDs, chatID)
	d.texts = append(d.texts, text)
	return nil
}

func TestSendDigestDeliversToAllAdmins(t *testing.T) {
	backend := &digestBackend{reservas: []*model.Reservation{
		{IDMatricula: 3, Bloque: &model.Block{HoraInicio: 9}},
	}}
	recorder := &digestRecorder{}
	s := NewScheduler(backend, recorder, []int64{100, 200}, zap.NewNop())

	s.sendDigest(context.Background())

	require.Len(t, recorder.chatIDs, 2)
	assert.Equal(t, []int64{100, 200}, recorder.chatIDs)
	assert.Equal(t, recorder.texts[0], recorder.texts[1])
	assert.Contains(t, recorder.texts[0], "matrícula #3")
}

func TestSendDigestSkipsWithoutAdmins(t *testing.T) {
	backend := &digestBackend{err: errors.New("should not be called")}
	recorder := &digestRecorder{}
	s := NewScheduler(backend, recorder, nil, zap.NewNop())

	s.sendDigest(context.Background())
	assert.Empty(t, recorder.chatIDs)
}

func TestSendDigestBackendFailureSendsNothing(t *testing.T) {
	backend := &digestBackend{err: errors.New("backend down")}
	recorder := &digestRecorder{}
	s := NewScheduler(backend, recorder, []int64{100}, zap.NewNop())

	s.sendDigest(context.Background())
	assert.Empty(t, recorder.chatIDs)
}
