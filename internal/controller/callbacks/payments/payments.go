package payments

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// HandleMenu экран платежей
func HandleMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		show(hc)
		hc.Answer("")
	})
}

func show(hc *common.HandlerContext) {
	sum, err := hc.Handler.PaymentService.Summary(hc.Ctx, hc.Session, hc.Role())
	if err != nil {
		common.HandleError(hc, err, "load payments")
		return
	}
	text, kb := common.BuildPaymentsScreen(hc.Role(), sum, hc.Handler.LessonService.Location())
	if err := hc.EditMessage(text, kb); err != nil {
		hc.Handler.Logger.Error("Failed to show payments", zap.Error(err))
	}
}

// HandlePay оплата урока учеником: pay:123
func HandlePay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, []model.Role{model.RoleStudent}, func(hc *common.HandlerContext) {
		common.WithLessonID(hc, func(id int64) {
			l, err := h.LessonService.Get(hc.Ctx, hc.Session, id)
			if err != nil {
				common.HandleError(hc, err, "get lesson")
				return
			}
			paid, err := h.PaymentService.IsPaid(hc.Ctx, hc.Session, id)
			if err != nil {
				common.HandleError(hc, err, "check payment")
				return
			}
			l.Paid = paid

			if _, err := h.PaymentService.Pay(hc.Ctx, hc.Session, hc.Role(), l); err != nil {
				common.HandleError(hc, err, "pay lesson")
				return
			}

			show(hc)
			common.LogAndAnswer(hc, "Lesson paid via bot", "✅ Оплачено "+formatting.Money(l.Amount()))
		})
	})
}
