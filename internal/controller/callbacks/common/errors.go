package common

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/chat"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
	"github.com/Freeeeeet/tutoring_bot/internal/session"
)

// Общие ошибки для обработчиков
var (
	ErrNoMessage      = errors.New("no message in callback")
	ErrInvalidFormat  = errors.New("invalid callback format")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrTutorNotFound  = errors.New("tutor not in search results")
	ErrDialogExpired  = errors.New("dialog data expired")
)

// LoginHint подсказка при отсутствии сессии
const LoginHint = "🔐 Сначала войдите в аккаунт: /login\nНет аккаунта? /register"

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	var (
		priceErr *service.PriceRangeError
		formErr  *service.ValidationError
	)

	switch {
	case errors.Is(err, session.ErrLoginRequired), errors.Is(err, apiclient.ErrUnauthorized):
		return LoginHint
	case errors.As(err, &priceErr):
		return fmt.Sprintf("⚠️ Цена вне диапазона репетитора (%s).\nОтправьте ещё раз без изменений, чтобы подтвердить.",
			formatting.PriceRange(priceErr.Min, priceErr.Max))
	case errors.As(err, &formErr):
		return "❌ " + FieldMessage(formErr.First())
	case errors.Is(err, service.ErrWrongRole):
		return "❌ Действие недоступно для вашей роли"
	case errors.Is(err, service.ErrLessonClosed):
		return "❌ Это действие для урока уже недоступно"
	case errors.Is(err, service.ErrSubjectNotOffered):
		return "❌ Репетитор не ведёт этот предмет"
	case errors.Is(err, service.ErrNoEmail):
		return "❌ В профиле нет email, чат недоступен"
	case errors.Is(err, chat.ErrNoStream):
		return "💬 Чат не открыт. Выберите собеседника: /chat"
	case errors.Is(err, chat.ErrEmptyMessage):
		return "❌ Пустое сообщение"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	case errors.Is(err, ErrLessonNotFound):
		return "❌ Урок не найден"
	case errors.Is(err, ErrTutorNotFound):
		return "❌ Репетитор не найден. Повторите поиск: /tutors"
	case errors.Is(err, ErrDialogExpired):
		return "❌ Данные диалога устарели, начните заново"
	}

	if msg, ok := apiclient.UserMessage(err); ok {
		return "❌ " + msg
	}
	return "❌ Произошла ошибка. Попробуйте позже."
}

var fieldNames = map[string]string{
	"username":        "Имя пользователя",
	"email":           "Email",
	"first_name":      "Имя",
	"last_name":       "Фамилия",
	"password":        "Пароль",
	"role":            "Роль",
	"subject":         "Предмет",
	"date":            "Дата",
	"start_time":      "Время начала",
	"end_time":        "Время окончания",
	"price_per_hour":  "Цена за час",
	"description":     "Описание",
	"feedback":        "Отзыв",
	"rating":          "Оценка",
	"bio":             "О себе",
	"tasks":           "Задачи",
	"goal":            "Цель",
	"education_level": "Уровень образования",
	"available_hours": "Доступные часы",
	"subjects":        "Предметы",
}

// FieldMessage текст ошибки поля формы
func FieldMessage(fe service.FieldError) string {
	name, ok := fieldNames[fe.Field]
	if !ok {
		name = fe.Field
	}

	switch fe.Rule {
	case "required":
		return name + ": обязательное поле"
	case "email":
		return name + ": неверный адрес"
	case "min":
		return fmt.Sprintf("%s: минимум %s", name, fe.Param)
	case "max", "lte":
		return fmt.Sprintf("%s: максимум %s", name, fe.Param)
	case "gt":
		return fmt.Sprintf("%s: должно быть больше %s", name, fe.Param)
	case "datetime":
		return name + ": неверный формат"
	case "after_start", "gtfield":
		return name + ": конец должен быть позже начала"
	case "oneof":
		return name + ": недопустимое значение"
	default:
		return name + ": неверное значение"
	}
}
