package lesson

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

// HandleMenu открывает список уроков на вкладке "Ожидают"
func HandleMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		ShowTab(hc, lessons.TabPending, 0)
	})
}

// HandleTab переключение вкладки и страницы: tab:upcoming:1
func HandleTab(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args := common.CallbackArgs(callback.Data, common.LessonsTab)
		if len(args) < 2 {
			common.HandleError(hc, common.ErrInvalidFormat, "parse lessons tab")
			return
		}
		page, err := strconv.Atoi(args[1])
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse lessons page")
			return
		}
		ShowTab(hc, lessons.ParseTab(args[0]), page)
	})
}

// ShowTab загружает уроки и показывает вкладку
func ShowTab(hc *common.HandlerContext, tab lessons.Tab, page int) {
	buckets, err := hc.Handler.LessonService.Buckets(hc.Ctx, hc.Session, hc.Role())
	if err != nil {
		common.HandleError(hc, err, "load lessons")
		return
	}
	hc.SetData(state.KeyTab, string(tab))

	text, kb := common.BuildLessonsScreen(buckets, tab, page, hc.Role(), hc.Handler.LessonService.Location())
	if err := hc.EditMessage(text, kb); err != nil {
		hc.Handler.Logger.Error("Failed to show lessons", zap.Error(err))
	}
	hc.Answer("")
}

// HandleView карточка урока: lesson:123:pending
func HandleView(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args := common.CallbackArgs(callback.Data, common.ViewLesson)
		if len(args) == 0 {
			common.HandleError(hc, common.ErrInvalidFormat, "parse lesson view")
			return
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse lesson id")
			return
		}
		tab := lessons.TabPending
		if len(args) > 1 {
			tab = lessons.ParseTab(args[1])
		}
		hc.SetData(state.KeyTab, string(tab))

		l, err := hc.Handler.LessonService.Get(hc.Ctx, hc.Session, id)
		if err != nil {
			common.HandleError(hc, err, "get lesson")
			return
		}
		showLesson(hc, l)
		hc.Answer("")
	})
}

// showLesson рисует карточку урока в текущем сообщении
func showLesson(hc *common.HandlerContext, l *model.Lesson) {
	role := hc.Role()
	paid := l.Paid
	if !paid && role == model.RoleStudent {
		var err error
		paid, err = hc.Handler.PaymentService.IsPaid(hc.Ctx, hc.Session, l.ID)
		if err != nil {
			// статус оплаты неизвестен: кнопку оплаты не показываем
			hc.Handler.Logger.Warn("Failed to check payment", zap.Int64("lesson_id", l.ID), zap.Error(err))
			paid = true
		}
	}

	now := time.Now()
	actions := common.ActionsFor(l, role, now, paid)
	text, kb := common.BuildLessonScreen(l, role, currentTab(hc), hc.Handler.LessonService.Location(), now, actions)
	if err := hc.EditMessage(text, kb); err != nil {
		hc.Handler.Logger.Error("Failed to show lesson", zap.Int64("lesson_id", l.ID), zap.Error(err))
	}
}

func currentTab(hc *common.HandlerContext) lessons.Tab {
	return lessons.ParseTab(common.String(hc.Handler.StateManager, hc.TelegramID, state.KeyTab))
}

// withLesson разбирает id из callback и загружает урок
func withLesson(hc *common.HandlerContext, handler func(l *model.Lesson)) {
	common.WithLessonID(hc, func(id int64) {
		l, err := hc.Handler.LessonService.Get(hc.Ctx, hc.Session, id)
		if err != nil {
			common.HandleError(hc, err, "get lesson")
			return
		}
		handler(l)
	})
}

// HandleAccept подтверждение урока стороной, от которой его ждут
func HandleAccept(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, []model.Role{model.RoleStudent, model.RoleTutor}, func(hc *common.HandlerContext) {
		withLesson(hc, func(l *model.Lesson) {
			if err := hc.Handler.LessonService.Accept(hc.Ctx, hc.Session, hc.Role(), l); err != nil {
				common.HandleError(hc, err, "accept lesson")
				return
			}
			showLesson(hc, l)
			common.LogAndAnswer(hc, "Lesson accepted via bot", "✅ Урок подтверждён")
		})
	})
}

// HandlePropose ученик отправляет урок репетитору повторно
func HandlePropose(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, []model.Role{model.RoleStudent}, func(hc *common.HandlerContext) {
		withLesson(hc, func(l *model.Lesson) {
			if err := hc.Handler.LessonService.Propose(hc.Ctx, hc.Session, hc.Role(), l); err != nil {
				common.HandleError(hc, err, "propose lesson")
				return
			}
			common.LogAndAnswer(hc, "Lesson proposed", "📨 Предложение отправлено репетитору")
		})
	})
}

// UpdateFormatHelp формат ввода изменений урока
const UpdateFormatHelp = "<code>2026-03-10 10:00-11:30 80 online</code>\n" +
	"Последнее слово <code>online</code> или <code>offline</code> можно не писать."

// HandleEdit переводит в диалог изменения времени и цены урока
func HandleEdit(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		withLesson(hc, func(l *model.Lesson) {
			if !lessons.CanUpdate(l, hc.Role(), time.Now()) {
				hc.AnswerAlert("❌ Закончившийся урок изменить нельзя")
				return
			}

			loc := hc.Handler.LessonService.Location()
			mode := "offline"
			if l.IsRemote {
				mode = "online"
			}
			current := fmt.Sprintf("%s %s-%s %g %s",
				l.StartTime.In(loc).Format("2006-01-02"),
				formatting.FormatTime(l.StartTime.In(loc)),
				formatting.FormatTime(l.EndTime.In(loc)),
				l.PricePerHour, mode)

			hc.Enter(state.StateLessonUpdate)
			hc.SetData(state.KeyLessonID, l.ID)
			text := fmt.Sprintf("✏️ <b>Изменение урока</b>\n\nСейчас: <code>%s</code>\n\nОтправьте новые дату, время и цену за час:\n%s\n\nОтмена: /cancel",
				current, UpdateFormatHelp)
			if err := hc.SendMessage(text, nil); err != nil {
				hc.Handler.Logger.Error("Failed to send update prompt", zap.Error(err))
			}
			hc.Answer("")
		})
	})
}

// HandleFeedback начинает отзыв: сначала текст, затем оценка кнопкой
func HandleFeedback(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		withLesson(hc, func(l *model.Lesson) {
			if !lessons.CanLeaveFeedback(l, time.Now()) {
				hc.AnswerAlert("❌ Отзыв к этому уроку уже оставить нельзя")
				return
			}
			hc.Enter(state.StateFeedbackText)
			hc.SetData(state.KeyLessonID, l.ID)
			if err := hc.SendMessage("💬 Напишите отзыв об уроке одним сообщением.\n\nОтмена: /cancel", nil); err != nil {
				hc.Handler.Logger.Error("Failed to send feedback prompt", zap.Error(err))
			}
			hc.Answer("")
		})
	})
}

// HandleRate оценка после текста отзыва: rate:123:5
func HandleRate(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args := common.CallbackArgs(callback.Data, common.RateLesson)
		if len(args) < 2 {
			common.HandleError(hc, common.ErrInvalidFormat, "parse rating")
			return
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse lesson id")
			return
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse rating value")
			return
		}

		text := common.String(h.StateManager, hc.TelegramID, state.KeyFeedback)
		if text == "" {
			common.HandleError(hc, common.ErrDialogExpired, "rate lesson")
			return
		}

		l, err := h.LessonService.Get(hc.Ctx, hc.Session, id)
		if err != nil {
			common.HandleError(hc, err, "get lesson")
			return
		}
		if err := h.LessonService.LeaveFeedback(hc.Ctx, hc.Session, l, service.FeedbackForm{Feedback: text, Rating: rating}); err != nil {
			common.HandleError(hc, err, "leave feedback")
			return
		}
		h.StateManager.DeleteData(hc.TelegramID, state.KeyFeedback)
		hc.ClearDialog()

		showLesson(hc, l)
		common.LogAndAnswer(hc, "Feedback left", "✅ Спасибо за отзыв!")
	})
}

// HandleUpload ждёт файл для урока
func HandleUpload(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithLessonID(hc, func(id int64) {
			hc.Enter(state.StateDocumentUpload)
			hc.SetData(state.KeyLessonID, id)
			if err := hc.SendMessage("📎 Отправьте файл документом, он будет прикреплён к уроку.\n\nОтмена: /cancel", nil); err != nil {
				hc.Handler.Logger.Error("Failed to send upload prompt", zap.Error(err))
			}
			hc.Answer("")
		})
	})
}
