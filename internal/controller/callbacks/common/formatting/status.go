package formatting

import (
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// Display emoji и текст для отображения
type Display struct {
	Emoji string
	Text  string
}

func (d Display) String() string {
	return d.Emoji + " " + d.Text
}

// GetTabDisplay заголовок вкладки уроков
func GetTabDisplay(tab lessons.Tab) Display {
	displays := map[lessons.Tab]Display{
		lessons.TabPending:  {"⏳", "Ожидают"},
		lessons.TabUpcoming: {"📅", "Предстоящие"},
		lessons.TabArchive:  {"🗂", "Архив"},
	}
	if d, ok := displays[tab]; ok {
		return d
	}
	return Display{"❓", "Неизвестно"}
}

// GetRoleDisplay название роли
func GetRoleDisplay(role model.Role) Display {
	displays := map[model.Role]Display{
		model.RoleStudent: {"🎒", "Ученик"},
		model.RoleTutor:   {"🎓", "Репетитор"},
		model.RoleParent:  {"👪", "Родитель"},
	}
	if d, ok := displays[role]; ok {
		return d
	}
	return Display{"❓", "Без роли"}
}

// TimingLabel "начнётся через 2 часа", "идёт сейчас", "закончился 3 дня назад"
func TimingLabel(l *model.Lesson, now time.Time) string {
	switch lessons.StatusAt(l, now) {
	case lessons.StatusUpcoming:
		return "⏳ начнётся через " + Humanize(lessons.TimeLeft(l, now))
	case lessons.StatusOngoing:
		return "🟢 идёт сейчас"
	default:
		return "✔️ закончился " + Humanize(lessons.TimeAgo(l, now)) + " назад"
	}
}

// AcceptanceLabel кто должен подтвердить урок
func AcceptanceLabel(l *model.Lesson) string {
	if l.IsAccepted {
		return "✅ Подтверждён"
	}
	switch l.AcceptedBy {
	case model.RoleTutor:
		return "⏳ Ждёт подтверждения репетитора"
	case model.RoleStudent:
		return "⏳ Ждёт подтверждения ученика"
	default:
		return "⏳ Не подтверждён"
	}
}
