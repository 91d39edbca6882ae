package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AnswerCallback убирает "часики" на кнопке, text показывается всплывающей подсказкой
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	answer(ctx, b, callbackID, text, false)
}

// AnswerCallbackAlert ответ окном, которое нужно закрыть
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	answer(ctx, b, callbackID, text, true)
}

// answer ошибку не возвращает: query могла устареть, а экран уже обновлён
func answer(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	if runes := []rune(text); len(runes) > maxAnswerLen {
		text = string(runes[:maxAnswerLen-1]) + "…"
	}
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// Telegram принимает до 200 символов текста ответа
const maxAnswerLen = 200

// GetMessageFromCallback сообщение с кнопкой; nil для недоступных (старых) сообщений
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	return callback.Message.Message
}

// ParseIDFromCallback извлекает первый ID после префикса
// Например: "lesson:123:pending" -> 123
func ParseIDFromCallback(data string) (int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid callback data format")
	}
	return strconv.ParseInt(parts[1], 10, 64)
}

// CallbackArgs аргументы после префикса: "rate:12:5" -> ["12", "5"]
func CallbackArgs(data, prefix string) []string {
	rest := strings.TrimPrefix(data, prefix)
	if rest == "" {
		return nil
	}
	return strings.Split(rest, ":")
}

// IsMessageNotModifiedError ошибка Telegram при редактировании без изменений
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
