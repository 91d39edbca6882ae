package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

func TestParseTutorFilter(t *testing.T) {
	f := ParseTutorFilter("city=Zielona_Góra subject=Math min=50 max=120 remote junk")
	assert.Equal(t, model.TutorFilter{City: "Zielona Góra", Subject: "Math", MinPrice: "50", MaxPrice: "120", RemoteOnly: true}, f)

	assert.Equal(t, model.TutorFilter{}, ParseTutorFilter(""))
}

func TestParseTimeRange(t *testing.T) {
	from, to, err := ParseTimeRange(" 9:00 - 10:30 ")
	require.NoError(t, err)
	assert.Equal(t, "09:00", from)
	assert.Equal(t, "10:30", to)

	_, _, err = ParseTimeRange("11:00-10:00")
	assert.ErrorIs(t, err, ErrBadTimeRange)
	_, _, err = ParseTimeRange("11:00")
	assert.ErrorIs(t, err, ErrBadTimeRange)
}

func TestParsePrice(t *testing.T) {
	v, err := ParsePrice("82,5")
	require.NoError(t, err)
	assert.InDelta(t, 82.5, v, 1e-9)

	_, err = ParsePrice("0")
	assert.ErrorIs(t, err, ErrBadPrice)
	_, err = ParsePrice("abc")
	assert.ErrorIs(t, err, ErrBadPrice)
}

func TestParseHours(t *testing.T) {
	hours, err := ParseHours("Monday 10:00-12:00; ср 16:00-18:00;")
	require.NoError(t, err)
	assert.Equal(t, []model.AvailableHour{
		{DayOfWeek: "Monday", StartTime: "10:00", EndTime: "12:00"},
		{DayOfWeek: "Wednesday", StartTime: "16:00", EndTime: "18:00"},
	}, hours)

	_, err = ParseHours("Funday 10:00-12:00")
	assert.ErrorIs(t, err, ErrBadHours)
	_, err = ParseHours("  ")
	assert.ErrorIs(t, err, ErrBadHours)
}

func TestParseSubjectIDs(t *testing.T) {
	ids, err := ParseSubjectIDs("1, 4 7")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 7}, ids)

	_, err = ParseSubjectIDs("1, x")
	assert.ErrorIs(t, err, ErrBadSubjects)
}

func TestParseLessonUpdate(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	current := &model.Lesson{Subject: model.Subject{ID: 3}, IsRemote: true, Description: "algebra"}

	form, err := ParseLessonUpdate("2026-03-10 10:00-11:30 80", current, loc)
	require.NoError(t, err)
	assert.Equal(t, int64(3), form.SubjectID)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, loc), form.StartTime)
	assert.Equal(t, 90*time.Minute, form.EndTime.Sub(form.StartTime))
	assert.True(t, form.IsRemote)
	assert.Equal(t, "algebra", form.Description)

	form, err = ParseLessonUpdate("2026-03-10 10:00-11:30 80 offline", current, loc)
	require.NoError(t, err)
	assert.False(t, form.IsRemote)

	_, err = ParseLessonUpdate("2026-03-10 10:00-11:30", current, loc)
	assert.ErrorIs(t, err, ErrBadUpdate)
	_, err = ParseLessonUpdate("2026-03-10 10:00-11:30 80 maybe", current, loc)
	assert.ErrorIs(t, err, ErrBadUpdate)
}

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, "city=Kraków remote", commandArgs("/tutors  city=Kraków remote "))
	assert.Equal(t, "", commandArgs("/tutors"))
}
