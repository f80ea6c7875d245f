package keyboard

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// PaginationButtons builds a prev/indicator/next row.
// prefix is the callback prefix, e.g. "tickets_page:". Pages are 0-based.
func PaginationButtons(prefix string, currentPage, totalPages int) []models.InlineKeyboardButton {
	if totalPages <= 1 {
		return nil
	}

	var buttons []models.InlineKeyboardButton

	if currentPage > 0 {
		buttons = append(buttons, Button("⬅️", fmt.Sprintf("%s%d", prefix, currentPage-1)))
	}

	buttons = append(buttons, Button(
		fmt.Sprintf("📄 %d/%d", currentPage+1, totalPages),
		"noop",
	))

	if currentPage < totalPages-1 {
		buttons = append(buttons, Button("➡️", fmt.Sprintf("%s%d", prefix, currentPage+1)))
	}

	return buttons
}

// AddPagination appends a pagination row when there is more than one page.
func (b *Builder) AddPagination(prefix string, currentPage, totalPages int) *Builder {
	buttons := PaginationButtons(prefix, currentPage, totalPages)
	if len(buttons) > 0 {
		b.Row(buttons...)
	}
	return b
}
