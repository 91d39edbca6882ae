package common

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/session"
)

// WithSession создаёт HandlerContext, проверяет токены и загружает пользователя.
// Без действующей сессии пользователь получает приглашение войти.
func WithSession(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	hc := NewHandlerContext(ctx, b, callback, h)

	if err := hc.LoadSession(); err != nil {
		if IsLoginRequired(err) {
			hc.Answer("")
			_ = hc.SendMessage(LoginHint, nil)
			return
		}
		h.Logger.Error("Failed to load session",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
		hc.AnswerAlert(ErrorMessage(err))
		return
	}

	handler(hc)
}

// WithRole как WithSession, но пропускает только указанные роли
func WithRole(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	roles []model.Role,
	handler func(*HandlerContext),
) {
	WithSession(ctx, b, callback, h, func(hc *HandlerContext) {
		for _, r := range roles {
			if hc.Role() == r {
				handler(hc)
				return
			}
		}
		hc.AnswerAlert("❌ Действие недоступно для вашей роли")
	})
}

// WithLessonID разбирает id урока из callback data
func WithLessonID(hc *HandlerContext, handler func(lessonID int64)) {
	id, err := ParseIDFromCallback(hc.Callback.Data)
	if err != nil {
		HandleError(hc, ErrInvalidFormat, "parse lesson id")
		return
	}
	handler(id)
}

// IsLoginRequired сессии нет или токены больше не принимаются сервером
func IsLoginRequired(err error) bool {
	return errors.Is(err, session.ErrLoginRequired) || errors.Is(err, apiclient.ErrUnauthorized)
}

// HandleError обрабатывает ошибку и отправляет ответ пользователю
func HandleError(hc *HandlerContext, err error, operation string) {
	hc.Handler.Logger.Error("Operation failed",
		zap.String("operation", operation),
		zap.Int64("telegram_id", hc.TelegramID),
		zap.Error(err))
	hc.AnswerAlert(ErrorMessage(err))
}

// LogAndAnswer логирует действие и отвечает на callback
func LogAndAnswer(hc *HandlerContext, message string, answer string) {
	hc.Handler.Logger.Info(message,
		zap.Int64("telegram_id", hc.TelegramID),
		zap.Int64("user_id", hc.User.ID))
	hc.Answer(answer)
}
