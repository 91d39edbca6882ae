package formatting

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// FormatLessonShort строка урока для списка
func FormatLessonShort(l *model.Lesson, role model.Role, loc *time.Location, index int) string {
	who := l.Counterparty(role)
	if who == "" {
		who = l.Tutor.UserFullName
	}
	return fmt.Sprintf("%d. <b>%s</b> · %s\n   👤 %s · %s",
		index,
		html.EscapeString(l.Subject.Name),
		FormatLessonTime(l.StartTime, l.EndTime, loc),
		html.EscapeString(who),
		Money(l.PricePerHour)+"/ч",
	)
}

// FormatLessonInfo карточка урока
func FormatLessonInfo(l *model.Lesson, role model.Role, loc *time.Location, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📚 <b>%s</b>\n\n", html.EscapeString(l.Subject.Name))
	fmt.Fprintf(&sb, "🗓 %s\n", FormatLessonTime(l.StartTime, l.EndTime, loc))
	if minutes := int(l.EndTime.Sub(l.StartTime).Minutes()); minutes > 0 {
		fmt.Fprintf(&sb, "⏱ %s\n", FormatDuration(minutes))
	}
	fmt.Fprintf(&sb, "%s\n", TimingLabel(l, now))
	fmt.Fprintf(&sb, "🎓 Репетитор: %s\n", html.EscapeString(l.Tutor.UserFullName))
	fmt.Fprintf(&sb, "🎒 Ученик: %s\n", html.EscapeString(l.Student.UserFullName))
	fmt.Fprintf(&sb, "💰 %s/ч · итого %s\n", Money(l.PricePerHour), Money(l.Amount()))

	format := "🏫 Очно"
	if l.IsRemote {
		format = "💻 Онлайн"
	}
	fmt.Fprintf(&sb, "%s\n", format)
	fmt.Fprintf(&sb, "%s\n", AcceptanceLabel(l))

	if l.Description != "" {
		fmt.Fprintf(&sb, "\n📝 %s\n", html.EscapeString(l.Description))
	}
	if l.Feedback != "" {
		rating := ""
		if l.Rating != nil {
			rating = fmt.Sprintf(" (%s)", Stars(*l.Rating))
		}
		fmt.Fprintf(&sb, "\n💬 Отзыв%s: %s\n", rating, html.EscapeString(l.Feedback))
	}
	if len(l.Documents) > 0 {
		fmt.Fprintf(&sb, "\n📎 Документы: %d\n", len(l.Documents))
		for i, d := range l.Documents {
			if d.UploadedAt.IsZero() {
				continue
			}
			fmt.Fprintf(&sb, "   %d. загружен %s\n", i+1, FormatDateTime(d.UploadedAt.In(loc)))
		}
	}
	return sb.String()
}

// Stars рейтинг 0..5 звёздами
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// FormatTutorShort строка репетитора в результатах поиска
func FormatTutorShort(u *model.User, index int) string {
	p, _ := u.Tutor()
	rating := 0.0
	var subjects []string
	if p != nil {
		rating = p.AverageRating
		for _, sp := range p.SubjectPrices {
			subjects = append(subjects, sp.Subject.Name)
		}
	}
	city := u.City
	if city == "" {
		city = "город не указан"
	}
	return fmt.Sprintf("%d. <b>%s</b> ⭐ %.1f\n   📍 %s\n   📚 %s",
		index,
		html.EscapeString(u.FullName()),
		rating,
		html.EscapeString(city),
		html.EscapeString(strings.Join(subjects, ", ")),
	)
}

// FormatHours доступные часы "Monday 10:00-12:00"
func FormatHours(hours []model.AvailableHour) string {
	if len(hours) == 0 {
		return "не указаны"
	}
	parts := make([]string, 0, len(hours))
	for _, h := range hours {
		parts = append(parts, fmt.Sprintf("%s %s-%s", h.DayOfWeek, h.StartTime, h.EndTime))
	}
	return strings.Join(parts, "; ")
}
