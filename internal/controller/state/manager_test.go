package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
)

func TestManagerStateAndData(t *testing.T) {
	sm := NewManager()
	assert.Equal(t, StateNone, sm.GetState(1))

	sm.SetState(1, StateLoginUsername)
	sm.SetData(1, KeyUsername, "anna")
	assert.Equal(t, StateLoginUsername, sm.GetState(1))

	v, ok := sm.GetData(1, KeyUsername)
	require.True(t, ok)
	assert.Equal(t, "anna", v)

	all := sm.GetAllData(1)
	all[KeyUsername] = "changed"
	v, _ = sm.GetData(1, KeyUsername)
	assert.Equal(t, "anna", v, "GetAllData returns a copy")

	sm.ClearState(1)
	assert.Equal(t, StateNone, sm.GetState(1))
	_, ok = sm.GetData(1, KeyUsername)
	assert.False(t, ok)
}

func TestClearDialogKeepsData(t *testing.T) {
	sm := NewManager()
	sm.SetData(7, KeyTutors, []int{1, 2})
	sm.SetState(7, StateBookingDate)

	sm.ClearDialog(7)
	assert.Equal(t, StateNone, sm.GetState(7))
	_, ok := sm.GetData(7, KeyTutors)
	assert.True(t, ok)

	sm.DeleteData(7, KeyTutors)
	_, ok = sm.GetData(7, KeyTutors)
	assert.False(t, ok)
}

func TestSetStateNoneDropsEntry(t *testing.T) {
	sm := NewManager()
	sm.SetState(3, StateChat)
	sm.SetData(3, KeyLessonID, int64(9))
	sm.SetState(3, StateNone)

	assert.Nil(t, sm.GetAllData(3))
}

func TestAdapter(t *testing.T) {
	sm := NewManager()
	var a callbacktypes.StateManager = NewAdapter(sm)

	a.SetState(5, callbacktypes.UserState(StateFeedbackText))
	a.SetData(5, KeyLessonID, int64(12))
	assert.Equal(t, StateFeedbackText, sm.GetState(5))

	v, ok := a.GetData(5, KeyLessonID)
	require.True(t, ok)
	assert.Equal(t, int64(12), v)

	a.ClearDialog(5)
	assert.Equal(t, callbacktypes.UserState(""), a.GetState(5))
}

func TestManagerConcurrentAccess(t *testing.T) {
	sm := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			sm.SetState(id%5, StateChat)
			sm.SetData(id%5, KeyTab, "pending")
			_ = sm.GetAllData(id % 5)
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, StateChat, sm.GetState(0))
}

func TestPruneDropsIdleDialogs(t *testing.T) {
	sm := NewManager()
	current := time.Date(2026, 5, 12, 12, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return current }

	sm.SetState(1, StateBookingDate)
	current = current.Add(2 * time.Hour)
	sm.SetData(2, KeyTutors, []int{1})

	assert.Equal(t, 1, sm.Prune(time.Hour))
	assert.Equal(t, StateNone, sm.GetState(1))
	_, ok := sm.GetData(2, KeyTutors)
	assert.True(t, ok)
}
