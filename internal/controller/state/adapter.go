package state

import (
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
)

// Adapter отдаёт Manager callback-обработчикам, которые не импортируют пакет state
type Adapter struct {
	sm *Manager
}

func NewAdapter(sm *Manager) *Adapter {
	return &Adapter{sm: sm}
}

var _ callbacktypes.StateManager = (*Adapter)(nil)

func (a *Adapter) GetState(telegramID int64) callbacktypes.UserState {
	return callbacktypes.UserState(a.sm.GetState(telegramID))
}

func (a *Adapter) SetState(telegramID int64, s callbacktypes.UserState) {
	a.sm.SetState(telegramID, UserState(s))
}

func (a *Adapter) GetData(telegramID int64, key string) (any, bool) {
	return a.sm.GetData(telegramID, key)
}

func (a *Adapter) SetData(telegramID int64, key string, value any) {
	a.sm.SetData(telegramID, key, value)
}

func (a *Adapter) DeleteData(telegramID int64, key string) {
	a.sm.DeleteData(telegramID, key)
}

func (a *Adapter) GetAllData(telegramID int64) map[string]any {
	return a.sm.GetAllData(telegramID)
}

// ClearDialog только шаг диалога, данные остаются
func (a *Adapter) ClearDialog(telegramID int64) {
	a.sm.ClearDialog(telegramID)
}

// ClearState шаг и все данные
func (a *Adapter) ClearState(telegramID int64) {
	a.sm.ClearState(telegramID)
}
