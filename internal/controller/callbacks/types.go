package callbacks

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

// Handler обертка для callbacktypes.Handler с методами
type Handler struct {
	*callbacktypes.Handler
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	lessonService *service.LessonService,
	tutorService *service.TutorService,
	paymentService *service.PaymentService,
	chatService *service.ChatService,
	guard callbacktypes.SessionGuard,
	stateManager callbacktypes.StateManager,
	logger *zap.Logger,
) *Handler {
	return &Handler{Handler: &callbacktypes.Handler{
		UserService:    userService,
		LessonService:  lessonService,
		TutorService:   tutorService,
		PaymentService: paymentService,
		ChatService:    chatService,
		Guard:          guard,
		StateManager:   stateManager,
		Logger:         logger,
	}}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	Route(ctx, b, update.CallbackQuery, h.Handler)
}
