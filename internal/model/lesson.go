package model

import "time"

// PersonRef краткая ссылка на участника урока
type PersonRef struct {
	ID           int64  `json:"id"`
	UserFullName string `json:"user_full_name"`
	Email        string `json:"email,omitempty"`
}

// Lesson урок в том виде, в котором его отдаёт API.
// Клиент хранит только временные копии, владелец данных - сервер.
type Lesson struct {
	ID           int64            `json:"id"`
	Tutor        PersonRef        `json:"tutor"`
	Student      PersonRef        `json:"student"`
	Subject      Subject          `json:"subject"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      time.Time        `json:"end_time"`
	PricePerHour float64          `json:"price_per_hour"`
	IsRemote     bool             `json:"is_remote"`
	IsAccepted   bool             `json:"is_accepted"`
	AcceptedBy   Role             `json:"accepted_by"`
	MeetingURL   string           `json:"google_meet_url,omitempty"`
	Description  string           `json:"description,omitempty"`
	Feedback     string           `json:"feedback,omitempty"`
	Rating       *int             `json:"rating,omitempty"`
	Paid         bool             `json:"paid,omitempty"`
	Documents    []LessonDocument `json:"documents,omitempty"`
}

// Duration длительность урока
func (l *Lesson) Duration() time.Duration {
	return l.EndTime.Sub(l.StartTime)
}

// Amount стоимость урока: цена за час * часы, не меньше нуля
func (l *Lesson) Amount() float64 {
	amount := l.PricePerHour * l.Duration().Hours()
	if amount < 0 {
		return 0
	}
	return amount
}

// HasEnded урок закончился и больше не меняется
func (l *Lesson) HasEnded(now time.Time) bool {
	return !l.EndTime.After(now)
}

// Counterparty имя второй стороны урока для роли role
func (l *Lesson) Counterparty(role Role) string {
	switch role {
	case RoleStudent:
		return l.Tutor.UserFullName
	case RoleTutor:
		return l.Student.UserFullName
	default:
		return ""
	}
}

// LessonDocument файл, прикреплённый к уроку
type LessonDocument struct {
	ID         int64     `json:"id"`
	Document   string    `json:"document"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// LessonDraft данные для создания урока (форма бронирования)
type LessonDraft struct {
	StudentID    int64   `json:"student"`
	TutorID      int64   `json:"tutor"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	SubjectID    int64   `json:"subject"`
	PricePerHour float64 `json:"price_per_hour"`
	IsRemote     bool    `json:"is_remote"`
	AcceptedBy   Role    `json:"accepted_by"`
	Description  string  `json:"description"`
}

// LessonUpdate изменения урока; AcceptedBy переходит ко второй стороне
type LessonUpdate struct {
	Description  string    `json:"description"`
	SubjectID    int64     `json:"subject"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	PricePerHour float64   `json:"price_per_hour"`
	IsRemote     bool      `json:"is_remote"`
	AcceptedBy   Role      `json:"accepted_by"`
}

// LessonFeedback отзыв об уроке
type LessonFeedback struct {
	Feedback string `json:"feedback"`
	Rating   int    `json:"rating"`
}
