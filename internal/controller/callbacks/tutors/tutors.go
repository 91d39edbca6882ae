package tutors

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

var searchRoles = []model.Role{model.RoleStudent, model.RoleParent}

// HandleMenu повторяет последний поиск и показывает первую страницу
func HandleMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, searchRoles, func(hc *common.HandlerContext) {
		tutors, err := Search(hc, common.Filter(h.StateManager, hc.TelegramID))
		if err != nil {
			common.HandleError(hc, err, "search tutors")
			return
		}
		showPage(hc, tutors, 0)
	})
}

// HandlePage страница результатов: tutors_page:2
func HandlePage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, searchRoles, func(hc *common.HandlerContext) {
		page, err := strconv.Atoi(callback.Data[len(common.TutorsPage):])
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse tutors page")
			return
		}

		tutors, ok := common.Tutors(h.StateManager, hc.TelegramID)
		if !ok {
			tutors, err = Search(hc, common.Filter(h.StateManager, hc.TelegramID))
			if err != nil {
				common.HandleError(hc, err, "search tutors")
				return
			}
		}
		showPage(hc, tutors, page)
	})
}

// Search выполняет поиск и запоминает результаты для карточек и бронирования
func Search(hc *common.HandlerContext, filter model.TutorFilter) ([]model.User, error) {
	tutors, err := hc.Handler.TutorService.Search(hc.Ctx, hc.Session, hc.User, filter)
	if err != nil {
		return nil, err
	}
	hc.SetData(state.KeyFilter, filter)
	hc.SetData(state.KeyTutors, tutors)
	return tutors, nil
}

func showPage(hc *common.HandlerContext, tutors []model.User, page int) {
	text, kb := common.BuildTutorsScreen(tutors, page)
	if err := hc.EditMessage(text, kb); err != nil {
		hc.Handler.Logger.Error("Failed to show tutors", zap.Error(err))
	}
	hc.Answer("")
}

// HandleView карточка репетитора: tutor:15
func HandleView(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithRole(ctx, b, callback, h, searchRoles, func(hc *common.HandlerContext) {
		id, err := common.ParseIDFromCallback(callback.Data)
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse tutor id")
			return
		}
		tutor, err := findTutor(hc, id)
		if err != nil {
			common.HandleError(hc, err, "find tutor")
			return
		}

		text, kb := common.BuildTutorScreen(tutor)
		if err := hc.EditMessage(text, kb); err != nil {
			hc.Handler.Logger.Error("Failed to show tutor", zap.Int64("tutor_id", id), zap.Error(err))
		}
		hc.Answer("")
	})
}

func findTutor(hc *common.HandlerContext, profileID int64) (*model.User, error) {
	tutors, ok := common.Tutors(hc.Handler.StateManager, hc.TelegramID)
	if !ok {
		return nil, common.ErrTutorNotFound
	}
	tutor, ok := service.Find(tutors, profileID)
	if !ok {
		return nil, common.ErrTutorNotFound
	}
	return tutor, nil
}
