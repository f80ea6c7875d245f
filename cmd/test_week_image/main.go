package main

import (
	"fmt"
	"os"
	"time"

	"github.com/autoescuela/reservas-bot/internal/calendar"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common"
	"github.com/autoescuela/reservas-bot/internal/model"
)

// Renders a sample week to week_test.png for eyeballing layout changes.
func main() {
	now := time.Now()
	week := calendar.WeekDates(now, 0)

	blocks := []*model.Block{
		{ID: 1, Fecha: week[0], HoraInicio: 9, HoraFin: 10, CapacidadMax: 2, ReservasActuales: 0},
		{ID: 2, Fecha: week[0], HoraInicio: 14, HoraFin: 15, CapacidadMax: 2, ReservasActuales: 2},
		{ID: 3, Fecha: week[1], HoraInicio: 10, HoraFin: 11, CapacidadMax: 2, ReservasActuales: 1},
		{ID: 4, Fecha: week[2], HoraInicio: 8, HoraFin: 9, CapacidadMax: 1, ReservasActuales: 0},
		{ID: 5, Fecha: week[3], HoraInicio: 16, HoraFin: 17, CapacidadMax: 2, ReservasActuales: 1},
		{ID: 6, Fecha: week[5], HoraInicio: 11, HoraFin: 12, CapacidadMax: 2, ReservasActuales: 0},
		{ID: 7, Fecha: week[6], HoraInicio: 9, HoraFin: 10, CapacidadMax: 2, ReservasActuales: 0},
	}
	reservations := []*model.Reservation{
		{ID: 100, IDBloque: 3, IDMatricula: 1, Bloque: blocks[2]},
	}

	idx := calendar.NewIndex(blocks, reservations)
	pc := calendar.Context{Now: now, QuotaRemaining: 5}
	sel := calendar.NewSelection()
	sel.SetMode(calendar.ModeReserve)
	sel.Toggle(blocks[0], idx, pc)

	grid := calendar.BuildGrid(week, idx, pc, sel)

	img, err := common.GenerateWeekImage(week, grid, now)
	if err != nil {
		fmt.Printf("Error generating image: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("week_test.png", img, 0644); err != nil {
		fmt.Printf("Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Image saved to week_test.png (%d bytes)\n", len(img))
}
