package lessons

import (
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// Status состояние урока относительно текущего времени
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusPast     Status = "past"
)

// StatusAt состояние урока на момент now
func StatusAt(l *model.Lesson, now time.Time) Status {
	switch {
	case l.StartTime.After(now):
		return StatusUpcoming
	case now.Before(l.EndTime):
		return StatusOngoing
	default:
		return StatusPast
	}
}

// TimeLeft сколько осталось до начала; ноль если урок уже начался
func TimeLeft(l *model.Lesson, now time.Time) time.Duration {
	if !l.StartTime.After(now) {
		return 0
	}
	return l.StartTime.Sub(now)
}

// TimeAgo сколько прошло с конца урока; ноль если урок не закончился
func TimeAgo(l *model.Lesson, now time.Time) time.Duration {
	if l.EndTime.After(now) {
		return 0
	}
	return now.Sub(l.EndTime)
}

// StartsWithin принятый урок начнётся в течение window
func StartsWithin(l *model.Lesson, now time.Time, window time.Duration) bool {
	if !l.IsAccepted || !l.StartTime.After(now) {
		return false
	}
	return l.StartTime.Sub(now) <= window
}
