package account

import (
	"context"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

// HandleRole последний шаг регистрации: register_role:Tutor
func HandleRole(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)
	if h.StateManager.GetState(hc.TelegramID) != callbacktypes.UserState(state.StateRegisterRole) {
		common.HandleError(hc, common.ErrDialogExpired, "register role")
		return
	}

	get := func(key string) string { return common.String(h.StateManager, hc.TelegramID, key) }
	form := service.RegisterForm{
		Username:  get(state.KeyUsername),
		Email:     get(state.KeyEmail),
		FirstName: get(state.KeyFirstName),
		LastName:  get(state.KeyLastName),
		Password:  get(state.KeyPassword),
		Role:      model.Role(callback.Data[len(common.RegisterRole):]),
	}

	msg, err := h.UserService.Register(ctx, form)
	// данные формы с паролем удаляются в любом случае
	hc.ClearState()
	if err != nil {
		h.Logger.Warn("Registration failed", zap.Int64("telegram_id", hc.TelegramID), zap.Error(err))
		hc.AnswerAlert(common.ErrorMessage(err))
		_ = hc.EditMessage(common.ErrorMessage(err)+"\n\nПопробовать снова: /register", nil)
		return
	}

	if msg == "" {
		msg = "Регистрация прошла успешно."
	}
	text := "✅ " + html.EscapeString(msg) + "\n\nТеперь войдите: /login"
	if err := hc.EditMessage(text, nil); err != nil {
		h.Logger.Error("Failed to show registration result", zap.Error(err))
	}
	hc.Answer("")
}
