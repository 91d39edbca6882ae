package model

import "time"

// Session пара токенов пользователя Telegram. Создаётся при входе,
// обновляется при refresh и удаляется при выходе.
type Session struct {
	TelegramID   int64     `json:"telegram_id"`
	ChatID       int64     `json:"chat_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
