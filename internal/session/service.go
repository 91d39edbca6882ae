package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// ErrNoSession пользователь не входил или вышел
var ErrNoSession = errors.New("no session")

// Store постоянное хранилище токенов. Get возвращает nil, nil если сессии нет.
type Store interface {
	Get(ctx context.Context, telegramID int64) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, telegramID int64) error
	List(ctx context.Context) ([]model.Session, error)
}

// Service единственная точка доступа к токенам: кэш в памяти поверх Store
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	cache map[int64]model.Session
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.Named("session"),
		now:    time.Now,
		cache:  make(map[int64]model.Session),
	}
}

// Login создаёт (или заменяет) сессию после успешного входа
func (s *Service) Login(ctx context.Context, telegramID, chatID int64, email string, access, refresh string) (*model.Session, error) {
	now := s.now()
	sess := model.Session{
		TelegramID:   telegramID,
		ChatID:       chatID,
		Email:        email,
		AccessToken:  access,
		RefreshToken: refresh,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Save(ctx, &sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.cache[telegramID] = sess
	s.mu.Unlock()

	s.logger.Info("Session created", zap.Int64("telegram_id", telegramID))
	return &sess, nil
}

// Tokens читает сессию из кэша, при промахе из Store
func (s *Service) Tokens(ctx context.Context, telegramID int64) (*model.Session, error) {
	s.mu.RLock()
	cached, ok := s.cache[telegramID]
	s.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	sess, err := s.store.Get(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	s.mu.Lock()
	s.cache[telegramID] = *sess
	s.mu.Unlock()

	return sess, nil
}

// UpdateAccessToken сохраняет новый access токен после refresh
func (s *Service) UpdateAccessToken(ctx context.Context, telegramID int64, access string) (*model.Session, error) {
	sess, err := s.Tokens(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	updated := *sess
	updated.AccessToken = access
	updated.UpdatedAt = s.now()
	if err := s.store.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save refreshed session: %w", err)
	}

	s.mu.Lock()
	s.cache[telegramID] = updated
	s.mu.Unlock()

	return &updated, nil
}

// SetEmail запоминает email пользователя, нужен для адреса чата
func (s *Service) SetEmail(ctx context.Context, telegramID int64, email string) error {
	sess, err := s.Tokens(ctx, telegramID)
	if err != nil {
		return err
	}
	if sess.Email == email {
		return nil
	}

	updated := *sess
	updated.Email = email
	updated.UpdatedAt = s.now()
	if err := s.store.Save(ctx, &updated); err != nil {
		return fmt.Errorf("save session email: %w", err)
	}

	s.mu.Lock()
	s.cache[telegramID] = updated
	s.mu.Unlock()
	return nil
}

// Logout удаляет сессию из кэша и хранилища
func (s *Service) Logout(ctx context.Context, telegramID int64) error {
	s.Invalidate(telegramID)
	if err := s.store.Delete(ctx, telegramID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("Session destroyed", zap.Int64("telegram_id", telegramID))
	return nil
}

// Invalidate сбрасывает только кэш; следующее чтение пойдёт в Store
func (s *Service) Invalidate(telegramID int64) {
	s.mu.Lock()
	delete(s.cache, telegramID)
	s.mu.Unlock()
}

// Active все сохранённые сессии (для напоминаний)
func (s *Service) Active(ctx context.Context) ([]model.Session, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
