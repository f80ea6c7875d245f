package common

import (
	"bytes"
	"image/color"
	"image/png"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/autoescuela/reservas-bot/internal/calendar"
	"github.com/autoescuela/reservas-bot/internal/controller/callbacks/common/formatting"
	"github.com/autoescuela/reservas-bot/internal/model"
)

// Canvas layout.
const (
	imageWidth      = 1400
	imageHeight     = 900
	headerHeight    = 100
	leftLabelsWidth = 80
	legendWidth     = 160
	cellPadding     = 3.0
	totalDaysInWeek = 7
)

// Color scheme.
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	todayBgColor   = color.NRGBA{255, 99, 71, 60}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{226, 226, 226, 255}

	cellFreeColor       = color.RGBA{133, 193, 85, 220}
	cellReservedColor   = color.RGBA{100, 149, 237, 220}
	cellFullColor       = color.RGBA{230, 110, 110, 220}
	cellRestrictedColor = color.RGBA{200, 180, 120, 200}
	cellPastColor       = color.RGBA{200, 200, 200, 180}
	cellAttendedColor   = color.RGBA{90, 160, 90, 160}
	cellMissedColor     = color.RGBA{190, 90, 90, 160}
	cellSelectedBorder  = color.RGBA{240, 190, 40, 255}

	legendTextColor = color.RGBA{90, 95, 100, 220}
)

// GenerateWeekImage renders the week grid as a PNG.
func GenerateWeekImage(week [7]model.Date, grid []calendar.Day, now time.Time) ([]byte, error) {
	today := model.DateOf(now)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(bgColor)
	dc.Clear()

	totalHours := calendar.LastHour - calendar.FirstHour + 1
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(totalHours)

	drawHeader(dc, week)
	drawHourLabels(dc, cellHeight)
	for i, day := range grid {
		x := float64(leftLabelsWidth + i*dayWidth)
		drawDayColumn(dc, day, i, day.Date.Equal(today), x, dayWidth, dayHeight, cellHeight)
	}
	drawLegend(dc)

	return encodeImage(dc)
}

func drawHeader(dc *gg.Context, week [7]model.Date) {
	startMonth := week[0].Month()
	endMonth := week[6].Month()

	title := formatting.MonthName(startMonth)
	if startMonth != endMonth {
		title += " - " + formatting.MonthName(endMonth)
	}

	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, imageWidth/2, headerHeight/4, 0.5, 0.5)
}

func drawHourLabels(dc *gg.Context, cellHeight float64) {
	dc.SetColor(hourLabelColor)
	for hour := calendar.FirstHour; hour <= calendar.LastHour; hour++ {
		y := float64(headerHeight) + float64(hour-calendar.FirstHour)*cellHeight + cellHeight/2
		dc.DrawStringAnchored(formatting.FormatHour(hour), leftLabelsWidth-10, y, 1, 0.5)
	}
}

func drawDayColumn(dc *gg.Context, day calendar.Day, dayIndex int, isToday bool, x float64, dayWidth, dayHeight int, cellHeight float64) {
	// Alternating background, today tinted.
	if dayIndex%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, headerHeight, float64(dayWidth), float64(dayHeight))
	dc.Fill()
	if isToday {
		dc.SetColor(todayBgColor)
		dc.DrawRectangle(x, headerHeight, float64(dayWidth), float64(dayHeight))
		dc.Fill()
	}

	dc.SetColor(textColor)
	label := formatting.FormatDate(dayIndex, day.Date)
	dc.DrawStringAnchored(label, x+float64(dayWidth)/2, headerHeight-20, 0.5, 0.5)

	for _, cell := range day.Cells {
		drawCell(dc, cell, x, cellHeight, dayWidth)
	}
}

func drawCell(dc *gg.Context, cell calendar.Cell, x float64, cellHeight float64, dayWidth int) {
	if cell.Kind == calendar.CellNoBlock {
		return
	}

	y := float64(headerHeight) + float64(cell.Hour-calendar.FirstHour)*cellHeight
	cx := x + cellPadding
	cy := y + cellPadding
	cw := float64(dayWidth) - 2*cellPadding
	ch := cellHeight - 2*cellPadding

	dc.SetColor(cellColor(cell.Kind))
	dc.DrawRoundedRectangle(cx, cy, cw, ch, 4)
	dc.Fill()

	if cell.Selected {
		dc.SetColor(cellSelectedBorder)
		dc.SetLineWidth(3)
		dc.DrawRoundedRectangle(cx, cy, cw, ch, 4)
		dc.Stroke()
	}
}

func cellColor(kind calendar.CellKind) color.Color {
	switch kind {
	case calendar.CellAvailable:
		return cellFreeColor
	case calendar.CellReserved:
		return cellReservedColor
	case calendar.CellFull:
		return cellFullColor
	case calendar.CellRestricted:
		return cellRestrictedColor
	case calendar.CellPastAttended:
		return cellAttendedColor
	case calendar.CellPastMissed:
		return cellMissedColor
	default:
		return cellPastColor
	}
}

func drawLegend(dc *gg.Context) {
	entries := []struct {
		label string
		color color.Color
	}{
		{"Libre", cellFreeColor},
		{"Reservado", cellReservedColor},
		{"Lleno", cellFullColor},
		{"Restringido", cellRestrictedColor},
		{"Asistió", cellAttendedColor},
		{"Faltó", cellMissedColor},
		{"Pasado", cellPastColor},
	}

	x := float64(imageWidth - legendWidth + 10)
	y := float64(headerHeight + 10)
	for _, entry := range entries {
		dc.SetColor(entry.color)
		dc.DrawRoundedRectangle(x, y, 18, 18, 3)
		dc.Fill()
		dc.SetColor(legendTextColor)
		dc.DrawStringAnchored(entry.label, x+26, y+9, 0, 0.5)
		y += 28
	}
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
