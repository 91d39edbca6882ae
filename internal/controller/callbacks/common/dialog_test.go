package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

func TestDialogData(t *testing.T) {
	sm := state.NewAdapter(state.NewManager())
	const id = int64(42)

	_, err := Booking(sm, id)
	assert.ErrorIs(t, err, ErrDialogExpired)
	_, err = LessonID(sm, id)
	assert.ErrorIs(t, err, ErrDialogExpired)

	tutor := &model.User{ID: 7, Profile: &model.TutorProfile{ID: 15}}
	sm.SetData(id, state.KeyBooking, &BookingDraft{Tutor: tutor})
	sm.SetData(id, state.KeyLessonID, int64(9))
	sm.SetData(id, state.KeyTutors, []model.User{*tutor})
	sm.SetData(id, state.KeyFilter, model.TutorFilter{City: "Kraków"})
	sm.SetData(id, state.KeyContacts, []model.Contact{{Username: "anna"}})
	sm.SetData(id, state.KeyFeedback, "great")

	draft, err := Booking(sm, id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), draft.Tutor.ID)

	lessonID, err := LessonID(sm, id)
	require.NoError(t, err)
	assert.Equal(t, int64(9), lessonID)

	tutors, ok := Tutors(sm, id)
	require.True(t, ok)
	assert.Len(t, tutors, 1)

	assert.Equal(t, "Kraków", Filter(sm, id).City)
	assert.Equal(t, "anna", Contacts(sm, id)[0].Username)
	assert.Equal(t, "great", String(sm, id, state.KeyFeedback))
	assert.Equal(t, "", String(sm, id, state.KeyField))
}
