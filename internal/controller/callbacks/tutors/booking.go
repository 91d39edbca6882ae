package tutors

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

var studentOnly = []model.Role{model.RoleStudent}

// DatePrompt первый шаг бронирования
const DatePrompt = "📅 Дата урока в формате <code>ГГГГ-ММ-ДД</code>, например <code>2026-03-10</code>.\n\nОтмена: /cancel"

// HandleBook начинает бронирование предмета: book:15:3
func HandleBook(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, studentOnly, func(hc *common.HandlerContext) {
		args := common.CallbackArgs(callback.Data, common.BookSubject)
		if len(args) < 2 {
			common.HandleError(hc, common.ErrInvalidFormat, "parse booking")
			return
		}
		tutorID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse tutor id")
			return
		}
		subjectID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse subject id")
			return
		}

		tutor, err := findTutor(hc, tutorID)
		if err != nil {
			common.HandleError(hc, err, "find tutor")
			return
		}
		profile, ok := tutor.Tutor()
		if !ok {
			common.HandleError(hc, common.ErrTutorNotFound, "find tutor profile")
			return
		}
		price, ok := profile.PriceFor(subjectID)
		if !ok {
			common.HandleError(hc, service.ErrSubjectNotOffered, "find subject")
			return
		}

		hc.SetData(state.KeyBooking, &common.BookingDraft{
			Tutor:   tutor,
			Subject: price,
			Form:    service.BookingForm{SubjectID: subjectID, PricePerHour: price.PriceMin},
		})
		hc.Enter(state.StateBookingDate)

		text := fmt.Sprintf("📝 Запись к <b>%s</b>: %s\n\n%s",
			html.EscapeString(tutor.FullName()), html.EscapeString(price.Subject.Name), DatePrompt)
		if err := hc.SendMessage(text, nil); err != nil {
			hc.Handler.Logger.Error("Failed to send booking prompt", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleRemote переключает онлайн/очно в сводке бронирования
func HandleRemote(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, studentOnly, func(hc *common.HandlerContext) {
		draft, err := common.Booking(h.StateManager, hc.TelegramID)
		if err != nil {
			common.HandleError(hc, err, "toggle remote")
			return
		}
		draft.Form.IsRemote = !draft.Form.IsRemote
		hc.SetData(state.KeyBooking, draft)

		text, kb := common.BuildBookingScreen(draft.Tutor, draft.Subject, draft.Form)
		if err := hc.EditMessage(text, kb); err != nil {
			hc.Handler.Logger.Error("Failed to update booking", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleConfirm отправляет бронирование. Цена вне диапазона показывается
// предупреждением, повторное нажатие отправляет тот же черновик.
func HandleConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, studentOnly, func(hc *common.HandlerContext) {
		draft, err := common.Booking(h.StateManager, hc.TelegramID)
		if err != nil {
			common.HandleError(hc, err, "confirm booking")
			return
		}

		l, err := h.LessonService.Book(hc.Ctx, hc.Session, hc.User, draft.Tutor, draft.Form)
		var priceErr *service.PriceRangeError
		if errors.As(err, &priceErr) {
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}
		if err != nil {
			common.HandleError(hc, err, "book lesson")
			return
		}

		h.StateManager.DeleteData(hc.TelegramID, state.KeyBooking)
		hc.ClearDialog()

		loc := h.LessonService.Location()
		text := fmt.Sprintf("✅ Урок отправлен репетитору на подтверждение\n\n%s\n🗓 %s\n💰 %s/ч",
			html.EscapeString(l.Subject.Name),
			formatting.FormatLessonTime(l.StartTime, l.EndTime, loc),
			formatting.Money(l.PricePerHour))
		kb := keyboard.NewBuilder().
			Row(keyboard.Button("📋 Открыть урок", fmt.Sprintf("%s%d:%s", common.ViewLesson, l.ID, lessons.Classify(l, l.StartTime)))).
			AddBackToMainButton().
			Build()
		if err := hc.EditMessage(text, kb); err != nil {
			hc.Handler.Logger.Error("Failed to show booked lesson", zap.Error(err))
		}
		common.LogAndAnswer(hc, "Lesson booked via bot", "✅ Готово")
	})
}

// HandleCancel отменяет бронирование
func HandleCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)
	h.StateManager.DeleteData(hc.TelegramID, state.KeyBooking)
	hc.ClearDialog()

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("🔎 К репетиторам", common.TutorsPage+"0")).
		AddBackToMainButton().
		Build()
	if err := hc.EditMessage("❌ Бронирование отменено", kb); err != nil {
		h.Logger.Error("Failed to cancel booking", zap.Error(err))
	}
	hc.Answer("")
}
