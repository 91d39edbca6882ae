package lessons

import (
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// CanAccept кнопка "Принять" показывается стороне, от которой ждут подтверждения.
// Пустой accepted_by разрешает принять и ученику, и репетитору.
func CanAccept(l *model.Lesson, role model.Role, now time.Time) bool {
	if l.IsAccepted || l.HasEnded(now) {
		return false
	}
	if role != model.RoleStudent && role != model.RoleTutor {
		return false
	}
	return l.AcceptedBy == model.RoleUnknown || l.AcceptedBy == role
}

// CanPropose ученик может предложить урок, который ещё не начался и не подтверждён
func CanPropose(l *model.Lesson, role model.Role, now time.Time) bool {
	return role == model.RoleStudent && !l.IsAccepted && l.StartTime.After(now)
}

// CanUpdate менять время и цену можно до окончания урока
func CanUpdate(l *model.Lesson, role model.Role, now time.Time) bool {
	if role == model.RoleUnknown {
		return false
	}
	return !l.HasEnded(now)
}

// CanLeaveFeedback отзыв оставляется один раз, пока урок не закончился
func CanLeaveFeedback(l *model.Lesson, now time.Time) bool {
	return now.Before(l.EndTime) && l.Feedback == ""
}

// CanPay ученик оплачивает урок, если оплаты ещё нет
func CanPay(l *model.Lesson, role model.Role, paid bool) bool {
	return role == model.RoleStudent && !paid && l.Amount() > 0
}

// NextAcceptor кто должен подтвердить урок после изменения стороной role
func NextAcceptor(role model.Role) model.Role {
	return role.Counterpart()
}
