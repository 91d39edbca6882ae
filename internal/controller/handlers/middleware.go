package handlers

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// requireSession проверяет токены и загружает текущего пользователя.
// Без сессии отправляет приглашение войти и возвращает false.
func (h *Handlers) requireSession(ctx context.Context, b *bot.Bot, msg *models.Message) (*model.Session, *model.User, bool) {
	sess, err := h.guard.Check(ctx, msg.From.ID)
	if err == nil {
		var user *model.User
		user, err = h.userService.Current(ctx, sess)
		if err == nil {
			return sess, user, true
		}
	}

	if common.IsLoginRequired(err) {
		h.sendMessage(ctx, b, msg.Chat.ID, common.LoginHint)
		return nil, nil, false
	}
	h.replyError(ctx, b, msg.Chat.ID, err, "load session")
	return nil, nil, false
}

// requireRole как requireSession, но пропускает только указанные роли
func (h *Handlers) requireRole(ctx context.Context, b *bot.Bot, msg *models.Message, roles ...model.Role) (*model.Session, *model.User, bool) {
	sess, user, ok := h.requireSession(ctx, b, msg)
	if !ok {
		return nil, nil, false
	}
	for _, r := range roles {
		if user.Role() == r {
			return sess, user, true
		}
	}
	h.sendError(ctx, b, msg.Chat.ID, "❌ Команда недоступна для вашей роли")
	return nil, nil, false
}

// replyError логирует ошибку и отправляет пользователю понятный текст
func (h *Handlers) replyError(ctx context.Context, b *bot.Bot, chatID int64, err error, operation string) {
	h.logger.Error("Operation failed",
		zap.String("operation", operation),
		zap.Int64("chat_id", chatID),
		zap.Error(err))
	h.sendError(ctx, b, chatID, common.ErrorMessage(err))
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.sendScreen(ctx, b, chatID, text, nil)
}

// sendMessage отправляет HTML сообщение
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.sendScreen(ctx, b, chatID, text, nil)
}

// sendScreen отправляет HTML сообщение с клавиатурой
func (h *Handlers) sendScreen(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// sendPhoto отправляет PNG с подписью
func (h *Handlers) sendPhoto(ctx context.Context, b *bot.Bot, chatID int64, data []byte, caption string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(data)},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	if _, err := b.SendPhoto(ctx, params); err != nil {
		h.logger.Error("Failed to send photo", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// deleteMessage удаляет сообщение пользователя, например с паролем
func (h *Handlers) deleteMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: msg.ID}); err != nil {
		h.logger.Debug("Failed to delete message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

// commandArgs текст после команды: "/tutors city=X" -> "city=X"
func commandArgs(text string) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(rest)
}
