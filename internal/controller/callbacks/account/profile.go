package account

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// FieldPrompts подсказки ввода для полей профиля
var FieldPrompts = map[string]string{
	common.ProfileFieldBio:       "✏️ Расскажите о себе одним сообщением.",
	common.ProfileFieldTasks:     "✏️ Опишите задачи, с которыми нужна помощь.",
	common.ProfileFieldGoal:      "✏️ Какая у вас цель занятий?",
	common.ProfileFieldEducation: "✏️ Уровень образования, например: <code>школа, 9 класс</code>.",
	common.ProfileFieldHours: "✏️ Доступные часы через точку с запятой:\n" +
		"<code>Monday 10:00-12:00; Wednesday 16:00-18:00</code>",
	common.ProfileFieldSubjects: "✏️ Номера предметов через запятую, например <code>1, 4, 7</code>.",
}

// HandleMenu экран профиля
func HandleMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		text, kb := common.BuildProfileScreen(hc.User)
		if err := hc.EditMessage(text, kb); err != nil {
			h.Logger.Error("Failed to show profile", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleEditField начинает изменение поля профиля: profile_edit:bio
func HandleEditField(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, []model.Role{model.RoleStudent, model.RoleTutor}, func(hc *common.HandlerContext) {
		field := callback.Data[len(common.EditProfile):]
		prompt, ok := FieldPrompts[field]
		if !ok {
			common.HandleError(hc, common.ErrInvalidFormat, "parse profile field")
			return
		}

		if field == common.ProfileFieldSubjects {
			list, err := h.TutorService.Subjects(hc.Ctx, hc.Session)
			if err != nil {
				common.HandleError(hc, err, "load subjects")
				return
			}
			prompt += "\n\n" + common.FormatSubjectList(list)
		}

		hc.Enter(state.StateProfileField)
		hc.SetData(state.KeyField, field)
		if err := hc.SendMessage(prompt+"\n\nОтмена: /cancel", nil); err != nil {
			h.Logger.Error("Failed to send profile prompt", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleAddChild родитель добавляет ребёнка по email
func HandleAddChild(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, []model.Role{model.RoleParent}, func(hc *common.HandlerContext) {
		hc.Enter(state.StateAddChild)
		if err := hc.SendMessage("👶 Email ребёнка, под которым он зарегистрирован.\n\nОтмена: /cancel", nil); err != nil {
			h.Logger.Error("Failed to send child prompt", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleLogout выход: токены удаляются, чат закрывается
func HandleLogout(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)
	h.ChatService.Close(hc.TelegramID)
	if err := h.UserService.Logout(ctx, hc.TelegramID); err != nil {
		common.HandleError(hc, err, "logout")
		return
	}
	hc.ClearState()

	if err := hc.EditMessage("👋 Вы вышли из аккаунта.\n\nВойти снова: /login", nil); err != nil {
		h.Logger.Error("Failed to show logout", zap.Error(err))
	}
	hc.Answer("")
}
