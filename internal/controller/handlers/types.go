package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

// Handlers содержит все зависимости для обработки команд и сообщений
type Handlers struct {
	userService    *service.UserService
	lessonService  *service.LessonService
	tutorService   *service.TutorService
	paymentService *service.PaymentService
	chatService    *service.ChatService
	guard          callbacktypes.SessionGuard
	stateManager   *state.Manager
	states         callbacktypes.StateManager
	logger         *zap.Logger
	now            func() time.Time
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	lessonService *service.LessonService,
	tutorService *service.TutorService,
	paymentService *service.PaymentService,
	chatService *service.ChatService,
	guard callbacktypes.SessionGuard,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:    userService,
		lessonService:  lessonService,
		tutorService:   tutorService,
		paymentService: paymentService,
		chatService:    chatService,
		guard:          guard,
		stateManager:   stateManager,
		states:         state.NewAdapter(stateManager),
		logger:         logger,
		now:            time.Now,
	}
}
