package callbacktypes

import (
	"context"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

// StateManager интерфейс для управления состоянием пользователей
type StateManager interface {
	ClearState(telegramID int64)
	ClearDialog(telegramID int64)
	GetState(telegramID int64) UserState
	SetState(telegramID int64, state UserState)
	SetData(telegramID int64, key string, value any)
	GetData(telegramID int64, key string) (any, bool)
	DeleteData(telegramID int64, key string)
	GetAllData(telegramID int64) map[string]any
}

// SessionGuard проверка токенов перед защищёнными экранами
type SessionGuard interface {
	Check(ctx context.Context, telegramID int64) (*model.Session, error)
}

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService    *service.UserService
	LessonService  *service.LessonService
	TutorService   *service.TutorService
	PaymentService *service.PaymentService
	ChatService    *service.ChatService
	Guard          SessionGuard
	StateManager   StateManager
	Logger         *zap.Logger
}
