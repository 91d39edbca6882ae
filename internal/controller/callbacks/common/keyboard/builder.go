package keyboard

import "github.com/go-telegram/bot/models"

// Builder собирает inline клавиатуру по рядам, пустые ряды пропускаются
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Row добавляет ряд из переданных кнопок
func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	return b.AddRow(buttons)
}

// AddRow добавляет готовый ряд
func (b *Builder) AddRow(row []models.InlineKeyboardButton) *Builder {
	if len(row) > 0 {
		b.rows = append(b.rows, row)
	}
	return b
}

func (b *Builder) AddRows(rows [][]models.InlineKeyboardButton) *Builder {
	for _, row := range rows {
		b.AddRow(row)
	}
	return b
}

// Grid раскладывает кнопки по perRow в ряд, например список собеседников
func (b *Builder) Grid(perRow int, buttons ...models.InlineKeyboardButton) *Builder {
	if perRow < 1 {
		perRow = 1
	}
	for start := 0; start < len(buttons); start += perRow {
		end := min(start+perRow, len(buttons))
		b.AddRow(buttons[start:end])
	}
	return b
}

func (b *Builder) Build() *models.InlineKeyboardMarkup {
	rows := b.rows
	if rows == nil {
		rows = [][]models.InlineKeyboardButton{}
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// Button кнопка с callback data; Telegram ограничивает data 64 байтами
func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

// URLButton кнопка-ссылка, например на Google Meet урока
func URLButton(text, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, URL: url}
}
