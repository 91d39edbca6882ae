package common

import (
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

func callbacks(kb *models.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != "" {
				out = append(out, b.CallbackData)
			}
		}
	}
	return out
}

func TestDashboardByRole(t *testing.T) {
	student := &model.User{FirstName: "Ola", Profile: &model.StudentProfile{}}
	text, kb := BuildDashboardScreen(student, &lessons.Buckets{Pending: []model.Lesson{{ID: 1}}})
	assert.Contains(t, text, "Ola")
	assert.Contains(t, text, "уровень образования")
	assert.Contains(t, text, "Ожидают: 1")
	assert.Contains(t, callbacks(kb), MenuTutors)

	tutor := &model.User{FirstName: "Jan", Profile: &model.TutorProfile{Bio: "physics"}}
	text, kb = BuildDashboardScreen(tutor, nil)
	assert.NotContains(t, text, "⚠️")
	assert.NotContains(t, callbacks(kb), MenuTutors)
}

func TestLessonsScreenPagination(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	var list []model.Lesson
	for i := 0; i < 7; i++ {
		start := now.Add(time.Duration(i+1) * time.Hour)
		list = append(list, model.Lesson{ID: int64(i + 1), StartTime: start, EndTime: start.Add(time.Hour), IsAccepted: true})
	}
	buckets := lessons.Split(now, list)

	text, kb := BuildLessonsScreen(buckets, lessons.TabUpcoming, 1, model.RoleStudent, time.UTC)
	assert.Contains(t, text, "7 уроков")
	data := callbacks(kb)
	assert.Contains(t, data, "lesson:6:upcoming")
	assert.Contains(t, data, "lesson:7:upcoming")
	assert.NotContains(t, data, "lesson:1:upcoming")
	assert.Contains(t, data, "tab:upcoming:0")
	assert.Contains(t, data, "tab:pending:0")
}

func TestLessonScreenActions(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	l := &model.Lesson{ID: 9, StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour), PricePerHour: 60, AcceptedBy: model.RoleTutor}

	acts := ActionsFor(l, model.RoleTutor, now, false)
	assert.True(t, acts.Accept)
	assert.False(t, acts.Pay)

	acts = ActionsFor(l, model.RoleStudent, now, false)
	assert.False(t, acts.Accept)
	assert.True(t, acts.Propose)
	assert.True(t, acts.Pay)

	_, kb := BuildLessonScreen(l, model.RoleStudent, lessons.TabPending, time.UTC, now, acts)
	data := callbacks(kb)
	assert.Contains(t, data, "propose:9")
	assert.Contains(t, data, "pay:9")
	assert.NotContains(t, data, "accept:9")
	assert.Equal(t, "tab:pending:0", data[len(data)-1])
}

func TestTutorScreenBookingButtons(t *testing.T) {
	tutor := &model.User{FirstName: "Jan", Profile: &model.TutorProfile{ID: 15, SubjectPrices: []model.SubjectPrice{
		{Subject: model.Subject{ID: 3, Name: "Physics"}, PriceMin: 50, PriceMax: 100},
		{Subject: model.Subject{ID: 4, Name: "Math"}, PriceMin: 40, PriceMax: 80},
	}}}
	text, kb := BuildTutorScreen(tutor)
	assert.Contains(t, text, "Physics")
	assert.Equal(t, []string{"book:15:3", "book:15:4", "tutors_page:0"}, callbacks(kb))
}

func TestPaymentsScreen(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	sum := &service.PaymentSummary{
		Unpaid:        []model.Lesson{{ID: 5, Subject: model.Subject{Name: "Math"}, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour), PricePerHour: 50}},
		UnpaidBalance: 50,
	}
	text, kb := BuildPaymentsScreen(model.RoleStudent, sum, time.UTC)
	assert.Contains(t, text, "К оплате")
	assert.Contains(t, callbacks(kb), "pay:5")

	text, kb = BuildPaymentsScreen(model.RoleTutor, sum, time.UTC)
	assert.Contains(t, text, "К получению")
	assert.NotContains(t, callbacks(kb), "pay:5")
}

func TestTranscriptKeepsTail(t *testing.T) {
	var history []model.Message
	for i := 0; i < 20; i++ {
		history = append(history, model.Message{Sender: "bob", Content: "m"})
	}
	history = append(history, model.Message{Sender: model.YouSender, Content: "<hi>"})

	text := BuildTranscript("bob", history)
	assert.Contains(t, text, "ещё 6 ранее")
	assert.Contains(t, text, "<b>Вы:</b> &lt;hi&gt;")
	assert.Equal(t, transcriptTail, strings.Count(text, "<b>bob:</b>")+strings.Count(text, "<b>Вы:</b>"))
}

func TestContactsScreenUsesIndexes(t *testing.T) {
	_, kb := BuildContactsScreen([]model.Contact{{Username: "anna"}, {Username: "bob"}}, "anna")
	data := callbacks(kb)
	require.Len(t, data, 4)
	assert.Equal(t, []string{"chat_open:0", "chat_open:1", CloseChat, BackToMain}, data)
}

func TestFormatSubjectList(t *testing.T) {
	assert.Equal(t, "Справочник предметов пуст.", FormatSubjectList(nil))
	assert.Equal(t, "<code>1</code> Math\n<code>4</code> R&amp;D",
		FormatSubjectList([]model.Subject{{ID: 1, Name: "Math"}, {ID: 4, Name: "R&D"}}))
}
