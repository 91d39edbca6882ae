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
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

// HandleWeek картинка текущей недели
func HandleWeek(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		ShowWeek(hc, 0)
	})
}

// HandleWeekOffset переключение недели: week:-1
func HandleWeekOffset(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		offset, err := strconv.Atoi(callback.Data[len(common.WeekOffset):])
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse week offset")
			return
		}
		ShowWeek(hc, offset)
	})
}

// ShowWeek отправляет картинку недели со сдвигом offset от текущей
func ShowWeek(hc *common.HandlerContext, offset int) {
	png, caption, err := RenderWeek(hc.Ctx, hc.Handler.LessonService, hc.Session, hc.Role(), offset)
	if err != nil {
		common.HandleError(hc, err, "render week")
		return
	}

	if err := hc.SendPhoto("week.png", png, caption, WeekKeyboard(offset)); err != nil {
		common.HandleError(hc, err, "send week image")
		return
	}
	// старую картинку убираем, чтобы навигация не плодила сообщения
	if hc.Message != nil && len(hc.Message.Photo) > 0 {
		if err := hc.DeleteMessage(); err != nil {
			hc.Handler.Logger.Debug("Failed to delete previous week", zap.Error(err))
		}
	}
	hc.Answer("")
}

// RenderWeek рисует неделю пользователя и подпись к ней
func RenderWeek(ctx context.Context, svc *service.LessonService, sess *model.Session, role model.Role, offset int) ([]byte, string, error) {
	list, err := svc.List(ctx, sess, role)
	if err != nil {
		return nil, "", err
	}
	loc := svc.Location()
	now := time.Now()
	day := now.AddDate(0, 0, 7*offset)

	png, err := common.GenerateWeekImage(day, list, now, loc)
	if err != nil {
		return nil, "", err
	}

	start := common.WeekStart(day, loc)
	caption := fmt.Sprintf("🗓 Неделя %s – %s",
		formatting.FormatDate(start), formatting.FormatDate(start.AddDate(0, 0, 6)))
	return png, caption, nil
}

// WeekKeyboard навигация по неделям
func WeekKeyboard(offset int) *models.InlineKeyboardMarkup {
	row := []models.InlineKeyboardButton{
		keyboard.Button("⬅️", fmt.Sprintf("%s%d", common.WeekOffset, offset-1)),
	}
	if offset != 0 {
		row = append(row, keyboard.Button("Сегодня", common.WeekOffset+"0"))
	}
	row = append(row, keyboard.Button("➡️", fmt.Sprintf("%s%d", common.WeekOffset, offset+1)))

	return keyboard.NewBuilder().
		Row(row...).
		Row(keyboard.Button("📚 Уроки", common.MenuLessons)).
		AddBackToMainButton().
		Build()
}
