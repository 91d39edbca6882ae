package common

import (
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

// BookingDraft бронирование, которое пользователь заполняет по шагам
type BookingDraft struct {
	Tutor   *model.User
	Subject model.SubjectPrice
	Form    service.BookingForm
}

// Booking текущий черновик бронирования
func Booking(sm callbacktypes.StateManager, telegramID int64) (*BookingDraft, error) {
	v, ok := sm.GetData(telegramID, state.KeyBooking)
	if !ok {
		return nil, ErrDialogExpired
	}
	draft, ok := v.(*BookingDraft)
	if !ok || draft.Tutor == nil {
		return nil, ErrDialogExpired
	}
	return draft, nil
}

// Tutors результаты последнего поиска репетиторов
func Tutors(sm callbacktypes.StateManager, telegramID int64) ([]model.User, bool) {
	v, ok := sm.GetData(telegramID, state.KeyTutors)
	if !ok {
		return nil, false
	}
	tutors, ok := v.([]model.User)
	return tutors, ok
}

// Filter фильтр последнего поиска
func Filter(sm callbacktypes.StateManager, telegramID int64) model.TutorFilter {
	if v, ok := sm.GetData(telegramID, state.KeyFilter); ok {
		if f, ok := v.(model.TutorFilter); ok {
			return f
		}
	}
	return model.TutorFilter{}
}

// Contacts собеседники, показанные последним экраном чата
func Contacts(sm callbacktypes.StateManager, telegramID int64) []model.Contact {
	if v, ok := sm.GetData(telegramID, state.KeyContacts); ok {
		if c, ok := v.([]model.Contact); ok {
			return c
		}
	}
	return nil
}

// LessonID урок, к которому относится текущий диалог
func LessonID(sm callbacktypes.StateManager, telegramID int64) (int64, error) {
	v, ok := sm.GetData(telegramID, state.KeyLessonID)
	if !ok {
		return 0, ErrDialogExpired
	}
	id, ok := v.(int64)
	if !ok {
		return 0, ErrDialogExpired
	}
	return id, nil
}

// String строковое значение из данных диалога
func String(sm callbacktypes.StateManager, telegramID int64, key string) string {
	if v, ok := sm.GetData(telegramID, key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
