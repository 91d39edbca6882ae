package state

import (
	"maps"
	"sync"
	"time"
)

// Manager хранит диалоги в памяти процесса; после перезапуска пользователь начинает заново
type Manager struct {
	mu    sync.RWMutex
	users map[int64]*UserData
	now   func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		users: make(map[int64]*UserData),
		now:   time.Now,
	}
}

// entry возвращает запись пользователя, создавая её; вызывать под mu.Lock
func (sm *Manager) entry(telegramID int64) *UserData {
	data, ok := sm.users[telegramID]
	if !ok {
		data = &UserData{Data: make(map[string]any)}
		sm.users[telegramID] = data
	}
	data.UpdatedAt = sm.now()
	return data
}

func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if data, ok := sm.users[telegramID]; ok {
		return data.State
	}
	return StateNone
}

// SetState переводит пользователя на шаг диалога; StateNone удаляет запись целиком
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.users, telegramID)
		return
	}
	sm.entry(telegramID).State = state
}

func (sm *Manager) GetData(telegramID int64, key string) (any, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	data, ok := sm.users[telegramID]
	if !ok {
		return nil, false
	}
	value, ok := data.Data[key]
	return value, ok
}

func (sm *Manager) SetData(telegramID int64, key string, value any) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.entry(telegramID).Data[key] = value
}

// ClearDialog сбрасывает шаг, данные (результаты поиска, контакты) остаются
func (sm *Manager) ClearDialog(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if data, ok := sm.users[telegramID]; ok {
		data.State = StateNone
	}
}

func (sm *Manager) DeleteData(telegramID int64, key string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if data, ok := sm.users[telegramID]; ok {
		delete(data.Data, key)
	}
}

// ClearState удаляет шаг и все данные, например при выходе
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.users, telegramID)
}

// GetAllData копия данных пользователя или nil
func (sm *Manager) GetAllData(telegramID int64) map[string]any {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if data, ok := sm.users[telegramID]; ok {
		return maps.Clone(data.Data)
	}
	return nil
}

// Prune удаляет диалоги, которые не менялись дольше maxIdle, и возвращает их число
func (sm *Manager) Prune(maxIdle time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := sm.now().Add(-maxIdle)
	removed := 0
	for id, data := range sm.users {
		if data.UpdatedAt.Before(cutoff) {
			delete(sm.users, id)
			removed++
		}
	}
	return removed
}
