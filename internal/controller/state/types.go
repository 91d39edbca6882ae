package state

import "time"

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Вход
	StateLoginUsername UserState = "login_username"
	StateLoginPassword UserState = "login_password"

	// Регистрация; роль выбирается кнопкой после пароля
	StateRegisterUsername  UserState = "register_username"
	StateRegisterEmail     UserState = "register_email"
	StateRegisterFirstName UserState = "register_first_name"
	StateRegisterLastName  UserState = "register_last_name"
	StateRegisterPassword  UserState = "register_password"
	StateRegisterRole      UserState = "register_role"

	// Бронирование урока у репетитора
	StateBookingDate        UserState = "booking_date"
	StateBookingTime        UserState = "booking_time"
	StateBookingPrice       UserState = "booking_price"
	StateBookingDescription UserState = "booking_description"
	StateBookingConfirm     UserState = "booking_confirm"

	// Действия с уроком
	StateLessonUpdate   UserState = "lesson_update"
	StateFeedbackText   UserState = "feedback_text"
	StateDocumentUpload UserState = "document_upload"

	// Профиль
	StateProfileField UserState = "profile_field"
	StateAddChild     UserState = "add_child"

	// Открытый чат: текст уходит собеседнику
	StateChat UserState = "chat"
)

// Ключи данных диалога
const (
	KeyUsername  = "username"
	KeyEmail     = "email"
	KeyFirstName = "first_name"
	KeyLastName  = "last_name"
	KeyPassword  = "password"
	KeyLessonID  = "lesson_id"
	KeyBooking   = "booking"
	KeyFeedback  = "feedback"
	KeyField     = "field"
	KeyTutors    = "tutors"
	KeyFilter    = "filter"
	KeyTab       = "tab"
	KeyContacts  = "contacts"
)

// UserData диалог пользователя: шаг и черновики (бронирование, результаты поиска)
type UserData struct {
	State     UserState
	Data      map[string]any
	UpdatedAt time.Time
}
