package chats

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
)

// HandleMenu список собеседников
func HandleMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		contacts, err := h.ChatService.Contacts(hc.Ctx, hc.Session)
		if err != nil {
			common.HandleError(hc, err, "load contacts")
			return
		}
		hc.SetData(state.KeyContacts, contacts)

		text, kb := common.BuildContactsScreen(contacts, h.ChatService.Recipient(hc.TelegramID))
		if err := hc.EditMessage(text, kb); err != nil {
			h.Logger.Error("Failed to show contacts", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleOpen открывает переписку с собеседником по индексу: chat_open:0
func HandleOpen(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, func(hc *common.HandlerContext) {
		idx, err := strconv.Atoi(callback.Data[len(common.OpenChat):])
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse contact index")
			return
		}
		contacts := common.Contacts(h.StateManager, hc.TelegramID)
		if idx < 0 || idx >= len(contacts) {
			common.HandleError(hc, common.ErrDialogExpired, "find contact")
			return
		}

		if err := Open(hc, contacts[idx].Username); err != nil {
			common.HandleError(hc, err, "open chat")
			return
		}
		hc.Answer("")
	})
}

// Open выбирает собеседника, переводит в режим чата и показывает переписку
func Open(hc *common.HandlerContext, recipient string) error {
	history, err := hc.Handler.ChatService.Open(hc.Ctx, hc.Session, recipient)
	if err != nil {
		return err
	}
	hc.Enter(state.StateChat)

	kb := keyboard.NewBuilder().Row(keyboard.Button("🔚 Закрыть чат", common.CloseChat)).Build()
	return hc.SendMessage(common.BuildTranscript(recipient, history), kb)
}

// HandleClose закрывает поток чата
func HandleClose(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)
	h.ChatService.Close(hc.TelegramID)
	if h.StateManager.GetState(hc.TelegramID) == callbacktypes.UserState(state.StateChat) {
		hc.ClearDialog()
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("💬 Другие переписки", common.MenuChat)).
		AddBackToMainButton().
		Build()
	if err := hc.EditMessage("🔚 Чат закрыт", kb); err != nil {
		h.Logger.Error("Failed to close chat", zap.Error(err))
	}
	hc.Answer("")
}
