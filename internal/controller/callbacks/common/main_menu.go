package common

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
)

// HandleBackToMain возвращает на главный экран и сбрасывает незаконченный диалог
func HandleBackToMain(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	WithSession(ctx, b, callback, h, func(hc *HandlerContext) {
		if h.StateManager.GetState(hc.TelegramID) != "" {
			hc.ClearDialog()
		}

		text, kb := BuildDashboardScreen(hc.User, LoadBuckets(hc))
		if err := hc.EditMessage(text, kb); err != nil {
			h.Logger.Error("Failed to show dashboard", zap.Error(err))
		}
		hc.Answer("")
	})
}

// LoadBuckets счётчики уроков для главного экрана; при ошибке nil
func LoadBuckets(hc *HandlerContext) *lessons.Buckets {
	buckets, err := hc.Handler.LessonService.Buckets(hc.Ctx, hc.Session, hc.Role())
	if err != nil {
		hc.Handler.Logger.Warn("Failed to load lesson counters", zap.Int64("telegram_id", hc.TelegramID), zap.Error(err))
		return nil
	}
	return &buckets
}
