package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/chat"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// ErrNoEmail чат адресуется по email, без него поток не открыть
var ErrNoEmail = errors.New("session has no email")

type ChatService struct {
	api    *apiclient.Client
	hub    *chat.Hub
	logger *zap.Logger
}

func NewChatService(api *apiclient.Client, hub *chat.Hub, logger *zap.Logger) *ChatService {
	return &ChatService{api: api, hub: hub, logger: logger}
}

// Contacts собеседники, с которыми уже есть переписка
func (s *ChatService) Contacts(ctx context.Context, sess *model.Session) ([]model.Contact, error) {
	return s.api.Contacts(ctx, sess.AccessToken)
}

// Open загружает историю и переключает поток на recipient
func (s *ChatService) Open(ctx context.Context, sess *model.Session, recipient string) ([]model.Message, error) {
	if sess.Email == "" {
		return nil, ErrNoEmail
	}

	history, err := s.api.Messages(ctx, sess.AccessToken, recipient)
	if err != nil {
		return nil, err
	}

	w := s.hub.Widget(sess.TelegramID, sess.Email)
	if err := w.Select(ctx, recipient, sess.AccessToken, history); err != nil {
		return nil, err
	}

	s.logger.Info("Chat opened",
		zap.Int64("telegram_id", sess.TelegramID),
		zap.String("recipient", recipient),
		zap.Int("history", len(history)))
	return history, nil
}

// Send отправляет текст в открытый чат
func (s *ChatService) Send(telegramID int64, text string) error {
	w, ok := s.hub.Lookup(telegramID)
	if !ok {
		return chat.ErrNoStream
	}
	return w.Send(text)
}

// Recipient текущий собеседник или пустая строка
func (s *ChatService) Recipient(telegramID int64) string {
	if w, ok := s.hub.Lookup(telegramID); ok {
		return w.Recipient()
	}
	return ""
}

// Close закрывает чат пользователя
func (s *ChatService) Close(telegramID int64) {
	s.hub.Close(telegramID)
}
