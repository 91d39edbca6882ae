package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/account"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/chats"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/lesson"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/payments"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/tutors"
)

// ========================
// Main Callback Router
// ========================

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID))

	switch {
	// ===== Навигация =====
	case data == common.BackToMain:
		common.HandleBackToMain(ctx, b, callback, h)
	case data == common.Noop:
		common.AnswerCallback(ctx, b, callback.ID, "")

	// ===== Уроки =====
	case data == common.MenuLessons:
		lesson.HandleMenu(ctx, b, callback, h)
	case strings.HasPrefix(data, common.LessonsTab):
		lesson.HandleTab(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ViewLesson):
		lesson.HandleView(ctx, b, callback, h)
	case strings.HasPrefix(data, common.AcceptLesson):
		lesson.HandleAccept(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ProposeLesson):
		lesson.HandlePropose(ctx, b, callback, h)
	case strings.HasPrefix(data, common.EditLesson):
		lesson.HandleEdit(ctx, b, callback, h)
	case strings.HasPrefix(data, common.FeedbackLesson):
		lesson.HandleFeedback(ctx, b, callback, h)
	case strings.HasPrefix(data, common.RateLesson):
		lesson.HandleRate(ctx, b, callback, h)
	case strings.HasPrefix(data, common.UploadDocument):
		lesson.HandleUpload(ctx, b, callback, h)
	case data == common.MenuWeek:
		lesson.HandleWeek(ctx, b, callback, h)
	case strings.HasPrefix(data, common.WeekOffset):
		lesson.HandleWeekOffset(ctx, b, callback, h)

	// ===== Репетиторы и бронирование =====
	case data == common.MenuTutors:
		tutors.HandleMenu(ctx, b, callback, h)
	case strings.HasPrefix(data, common.TutorsPage):
		tutors.HandlePage(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ViewTutor):
		tutors.HandleView(ctx, b, callback, h)
	case data == common.BookRemote:
		tutors.HandleRemote(ctx, b, callback, h)
	case data == common.BookConfirm:
		tutors.HandleConfirm(ctx, b, callback, h)
	case data == common.BookCancel:
		tutors.HandleCancel(ctx, b, callback, h)
	case strings.HasPrefix(data, common.BookSubject):
		tutors.HandleBook(ctx, b, callback, h)

	// ===== Платежи =====
	case data == common.MenuPayments:
		payments.HandleMenu(ctx, b, callback, h)
	case strings.HasPrefix(data, common.PayLesson):
		payments.HandlePay(ctx, b, callback, h)

	// ===== Чат =====
	case data == common.MenuChat:
		chats.HandleMenu(ctx, b, callback, h)
	case strings.HasPrefix(data, common.OpenChat):
		chats.HandleOpen(ctx, b, callback, h)
	case data == common.CloseChat:
		chats.HandleClose(ctx, b, callback, h)

	// ===== Профиль и аккаунт =====
	case data == common.MenuProfile:
		account.HandleMenu(ctx, b, callback, h)
	case strings.HasPrefix(data, common.EditProfile):
		account.HandleEditField(ctx, b, callback, h)
	case data == common.AddChild:
		account.HandleAddChild(ctx, b, callback, h)
	case strings.HasPrefix(data, common.RegisterRole):
		account.HandleRole(ctx, b, callback, h)
	case data == common.Logout:
		account.HandleLogout(ctx, b, callback, h)

	default:
		h.Logger.Warn("Unknown callback", zap.String("data", data))
		common.AnswerCallback(ctx, b, callback.ID, "❓ Неизвестная команда")
	}
}
