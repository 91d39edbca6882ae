package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/metrics"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// ErrLoginRequired проверка не пройдена, пользователя нужно отправить на /login
var ErrLoginRequired = errors.New("login required")

// Verifier серверная проверка и обновление токенов
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (bool, error)
	RefreshToken(ctx context.Context, refresh string) (string, error)
}

// State состояние проверки сессии
type State string

const (
	StateUnknown    State = "unknown"
	StateValid      State = "valid"
	StateInvalid    State = "invalid"
	StateRedirected State = "redirected"
)

// Guard проверяет токен перед каждым защищённым экраном.
// Невалидный токен обновляется ровно одной попыткой refresh, без повторов.
type Guard struct {
	sessions *Service
	verifier Verifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewGuard(sessions *Service, verifier Verifier, logger *zap.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		verifier: verifier,
		logger:   logger.Named("guard"),
		now:      time.Now,
	}
}

// Check возвращает сессию с действующим access токеном или ErrLoginRequired
func (g *Guard) Check(ctx context.Context, telegramID int64) (*model.Session, error) {
	sess, err := g.sessions.Tokens(ctx, telegramID)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			g.logger.Error("Failed to load session", zap.Int64("telegram_id", telegramID), zap.Error(err))
		}
		return nil, g.redirect(telegramID, StateUnknown)
	}

	if sess.AccessToken == "" {
		return nil, g.redirect(telegramID, StateUnknown)
	}

	if !g.expired(sess.AccessToken) {
		valid, err := g.verifier.VerifyToken(ctx, sess.AccessToken)
		if err != nil {
			g.logger.Warn("Token verification failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
			return nil, g.redirect(telegramID, StateUnknown)
		}
		if valid {
			metrics.SessionCheck(string(StateValid))
			return sess, nil
		}
	}

	if sess.RefreshToken == "" {
		return nil, g.redirect(telegramID, StateInvalid)
	}

	access, err := g.verifier.RefreshToken(ctx, sess.RefreshToken)
	metrics.SessionRefresh(err == nil)
	if err != nil {
		g.logger.Info("Token refresh failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil, g.redirect(telegramID, StateInvalid)
	}

	refreshed, err := g.sessions.UpdateAccessToken(ctx, telegramID, access)
	if err != nil {
		g.logger.Error("Failed to store refreshed token", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil, g.redirect(telegramID, StateInvalid)
	}

	metrics.SessionCheck("refreshed")
	return refreshed, nil
}

func (g *Guard) redirect(telegramID int64, from State) error {
	g.logger.Debug("Redirecting to login",
		zap.Int64("telegram_id", telegramID),
		zap.String("from", string(from)))
	metrics.SessionCheck(string(StateRedirected))
	return ErrLoginRequired
}

// expired true только для JWT с истёкшим exp; непрозрачные токены проверяет сервер
func (g *Guard) expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(g.now())
}
