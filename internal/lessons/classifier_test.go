package lessons

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

var now = time.Date(2026, 5, 12, 12, 0, 0, 0, time.UTC)

func lesson(id int64, start, end time.Duration, accepted bool) model.Lesson {
	return model.Lesson{
		ID:         id,
		StartTime:  now.Add(start),
		EndTime:    now.Add(end),
		IsAccepted: accepted,
	}
}

func ids(list []model.Lesson) []int64 {
	out := make([]int64, 0, len(list))
	for _, l := range list {
		out = append(out, l.ID)
	}
	return out
}

func TestClassifyLifecycle(t *testing.T) {
	l := lesson(1, time.Hour, 2*time.Hour, false)
	assert.Equal(t, TabPending, Classify(&l, now))

	l.IsAccepted = true
	assert.Equal(t, TabUpcoming, Classify(&l, now))

	later := now.Add(3 * time.Hour)
	assert.Equal(t, TabArchive, Classify(&l, later))
	l.IsAccepted = false
	assert.Equal(t, TabArchive, Classify(&l, later))
}

func TestClassifyOngoingStaysActive(t *testing.T) {
	pending := lesson(1, -30*time.Minute, 30*time.Minute, false)
	upcoming := lesson(2, -30*time.Minute, 30*time.Minute, true)

	assert.Equal(t, TabPending, Classify(&pending, now))
	assert.Equal(t, TabUpcoming, Classify(&upcoming, now))
}

func TestClassifyEndBoundaryIsArchive(t *testing.T) {
	l := lesson(1, -time.Hour, 0, true)
	assert.Equal(t, TabArchive, Classify(&l, now))
}

func TestSplitBucketsAreExclusiveAndOrdered(t *testing.T) {
	list := []model.Lesson{
		lesson(1, 5*time.Hour, 6*time.Hour, false),
		lesson(2, -48*time.Hour, -47*time.Hour, true),
		lesson(3, time.Hour, 2*time.Hour, false),
		lesson(4, 3*time.Hour, 4*time.Hour, true),
		lesson(5, -10*time.Minute, 50*time.Minute, true),
		lesson(6, -3*time.Hour, -2*time.Hour, false),
		lesson(7, -72*time.Hour, -71*time.Hour, false),
	}

	b := Split(now, list)

	assert.Equal(t, []int64{3, 1}, ids(b.Pending))
	assert.Equal(t, []int64{5, 4}, ids(b.Upcoming))
	assert.Equal(t, []int64{6, 2, 7}, ids(b.Archive))
	assert.Equal(t, len(list), b.Len())
	assert.Equal(t, int64(1), list[0].ID, "input must stay untouched")
}

func TestSplitProperties(t *testing.T) {
	var list []model.Lesson
	var id int64
	for start := -6; start <= 6; start++ {
		for length := 1; length <= 3; length++ {
			for _, accepted := range []bool{false, true} {
				id++
				list = append(list, lesson(id,
					time.Duration(start)*time.Hour,
					time.Duration(start+length)*time.Hour,
					accepted))
			}
		}
	}

	b := Split(now, list)
	require.Equal(t, len(list), b.Len())

	seen := map[int64]Tab{}
	for _, tab := range Tabs {
		for _, l := range b.Get(tab) {
			_, dup := seen[l.ID]
			require.False(t, dup, "lesson %d in two buckets", l.ID)
			seen[l.ID] = tab
		}
	}

	for _, l := range list {
		if l.EndTime.Before(now) {
			assert.Equal(t, TabArchive, seen[l.ID], "ended lesson %d", l.ID)
		}
		if !l.IsAccepted && l.StartTime.After(now) {
			assert.Equal(t, TabPending, seen[l.ID], "future unaccepted lesson %d", l.ID)
		}
	}
}

func TestParseTab(t *testing.T) {
	assert.Equal(t, TabArchive, ParseTab("archive"))
	assert.Equal(t, TabUpcoming, ParseTab("upcoming"))
	assert.Equal(t, TabPending, ParseTab("whatever"))
}
