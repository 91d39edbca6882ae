package common

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

func TestNormalizeToWeekBounds(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC)
	week := normalizeToWeekBounds(sunday)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), week.start)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), week.end)
}

func TestGroupLessonsByDayKeepsOnlyWeek(t *testing.T) {
	week := normalizeToWeekBounds(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))
	list := []model.Lesson{
		{ID: 1, StartTime: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)},
		{ID: 2, StartTime: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)},
		{ID: 3, StartTime: time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)},
		{ID: 4, StartTime: time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)},
	}
	byDay := groupLessonsByDay(list, week, time.UTC)
	assert.Len(t, byDay["2026-03-02"], 2)
	assert.Len(t, byDay, 1)
}

func TestCalculateHourRange(t *testing.T) {
	hours := calculateHourRange(nil)
	assert.Equal(t, defaultMinHour-hourPaddingTop, hours.start)
	assert.Equal(t, defaultMaxHour+hourPaddingBot, hours.end)

	byDay := map[string][]model.Lesson{"d": {{
		StartTime: time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}}}
	hours = calculateHourRange(byDay)
	assert.Equal(t, 6, hours.start)
	assert.Equal(t, 11, hours.end)
	assert.Equal(t, 5, hours.total)
}

func TestTabColor(t *testing.T) {
	assert.Equal(t, pendingColor, tabColor(lessons.TabPending))
	assert.Equal(t, upcomingColor, tabColor(lessons.TabUpcoming))
	assert.Equal(t, archiveColor, tabColor(lessons.TabArchive))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Физика", truncate("Физика", 10))
	assert.Equal(t, "Мате…", truncate("Математика", 5))
}

func TestGenerateWeekImage(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	list := []model.Lesson{
		{ID: 1, Subject: model.Subject{Name: "Физика"}, StartTime: now.Add(-26 * time.Hour), EndTime: now.Add(-25 * time.Hour), IsAccepted: true},
		{ID: 2, Subject: model.Subject{Name: "Математика"}, StartTime: now.Add(2 * time.Hour), EndTime: now.Add(3 * time.Hour)},
		{ID: 3, Subject: model.Subject{Name: "Химия"}, StartTime: now.Add(26 * time.Hour), EndTime: now.Add(27 * time.Hour), IsAccepted: true},
	}

	data, err := GenerateWeekImage(now, list, now, time.UTC)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}
