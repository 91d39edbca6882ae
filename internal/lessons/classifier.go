package lessons

import (
	"sort"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// Tab вкладка списка уроков
type Tab string

const (
	TabPending  Tab = "pending"
	TabUpcoming Tab = "upcoming"
	TabArchive  Tab = "archive"
)

// Tabs порядок вкладок в интерфейсе
var Tabs = []Tab{TabPending, TabUpcoming, TabArchive}

// ParseTab разбирает имя вкладки, неизвестное значение даёт pending
func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabUpcoming:
		return TabUpcoming
	case TabArchive:
		return TabArchive
	default:
		return TabPending
	}
}

// Buckets результат разбиения списка уроков по вкладкам
type Buckets struct {
	Pending  []model.Lesson
	Upcoming []model.Lesson
	Archive  []model.Lesson
}

// Get возвращает уроки вкладки
func (b Buckets) Get(tab Tab) []model.Lesson {
	switch tab {
	case TabUpcoming:
		return b.Upcoming
	case TabArchive:
		return b.Archive
	default:
		return b.Pending
	}
}

// Len общее количество уроков
func (b Buckets) Len() int {
	return len(b.Pending) + len(b.Upcoming) + len(b.Archive)
}

// Classify определяет вкладку одного урока. Незакончившийся урок либо ещё не начался,
// либо идёт сейчас, поэтому для pending/upcoming достаточно флага подтверждения.
func Classify(l *model.Lesson, now time.Time) Tab {
	if l.HasEnded(now) {
		return TabArchive
	}
	if l.IsAccepted {
		return TabUpcoming
	}
	return TabPending
}

// Split разбивает уроки на pending/upcoming/archive.
// Pending и upcoming отсортированы по началу по возрастанию, архив по убыванию.
// Входной срез не изменяется.
func Split(now time.Time, list []model.Lesson) Buckets {
	var b Buckets
	for i := range list {
		switch Classify(&list[i], now) {
		case TabPending:
			b.Pending = append(b.Pending, list[i])
		case TabUpcoming:
			b.Upcoming = append(b.Upcoming, list[i])
		case TabArchive:
			b.Archive = append(b.Archive, list[i])
		}
	}

	sort.SliceStable(b.Pending, func(i, j int) bool {
		return b.Pending[i].StartTime.Before(b.Pending[j].StartTime)
	})
	sort.SliceStable(b.Upcoming, func(i, j int) bool {
		return b.Upcoming[i].StartTime.Before(b.Upcoming[j].StartTime)
	})
	sort.SliceStable(b.Archive, func(i, j int) bool {
		return b.Archive[i].StartTime.After(b.Archive[j].StartTime)
	})

	return b
}
