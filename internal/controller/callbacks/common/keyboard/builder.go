package keyboard

import "github.com/go-telegram/bot/models"

// Builder assembles inline keyboards row by row.
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

func NewBuilder() *Builder {
	return &Builder{
		rows: make([][]models.InlineKeyboardButton, 0),
	}
}

// Row appends a row of buttons. Empty rows are skipped.
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	if len(buttons) > 0 {
		b.rows = append(b.rows, buttons)
	}
	return b
}

// AddRow appends a prebuilt row.
func (b *Builder) AddRow(row []models.InlineKeyboardButton) *Builder {
	if len(row) > 0 {
		b.rows = append(b.rows, row)
	}
	return b
}

// AddRows appends several prebuilt rows.
func (b *Builder) AddRows(rows [][]models.InlineKeyboardButton) *Builder {
	b.rows = append(b.rows, rows...)
	return b
}

// Build produces the final keyboard markup.
func (b *Builder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: b.rows,
	}
}

// Button creates a callback button.
func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// Empty returns a keyboard with no buttons.
func Empty() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{},
	}
}
