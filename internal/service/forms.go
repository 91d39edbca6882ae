package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// имена полей из тега form
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// FieldError ошибка одного поля формы: поле и нарушенное правило
type FieldError struct {
	Field string
	Rule  string
	Param string
}

// ValidationError ошибки формы; показываются пользователю без повторной отправки
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+":"+f.Rule)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// First первая ошибка, по ней диалог возвращается к нужному шагу
func (e *ValidationError) First() FieldError {
	if len(e.Fields) == 0 {
		return FieldError{}
	}
	return e.Fields[0]
}

func fieldError(field, rule string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule}}}
}

// validateForm запускает validator и переводит ошибки в ValidationError
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate form: %w", err)
	}
	out := &ValidationError{}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type RegisterForm struct {
	Username  string     `form:"username" validate:"required,min=3,max=150"`
	Email     string     `form:"email" validate:"required,email"`
	FirstName string     `form:"first_name" validate:"required,max=150"`
	LastName  string     `form:"last_name" validate:"required,max=150"`
	Password  string     `form:"password" validate:"required,min=8"`
	Role      model.Role `form:"role" validate:"required,oneof=Student Tutor Parent"`
}

// BookingForm бронирование урока у репетитора
type BookingForm struct {
	SubjectID    int64   `form:"subject" validate:"required,gt=0"`
	Date         string  `form:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string  `form:"start_time" validate:"required,datetime=15:04"`
	EndTime      string  `form:"end_time" validate:"required,datetime=15:04"`
	PricePerHour float64 `form:"price_per_hour" validate:"gt=0,lte=100000"`
	IsRemote     bool    `form:"is_remote"`
	Description  string  `form:"description" validate:"max=1000"`
}

// Interval начало и конец урока в часовом поясе loc
func (f *BookingForm) Interval(loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(DateLayout+" "+ClockLayout, f.Date+" "+f.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fieldError("start_time", "datetime")
	}
	end, err := time.ParseInLocation(DateLayout+" "+ClockLayout, f.Date+" "+f.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fieldError("end_time", "datetime")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fieldError("end_time", "after_start")
	}
	return start, end, nil
}

// LessonUpdateForm изменение времени, цены и формата урока
type LessonUpdateForm struct {
	SubjectID    int64     `form:"subject" validate:"required,gt=0"`
	StartTime    time.Time `form:"start_time" validate:"required"`
	EndTime      time.Time `form:"end_time" validate:"required,gtfield=StartTime"`
	PricePerHour float64   `form:"price_per_hour" validate:"gt=0,lte=100000"`
	IsRemote     bool      `form:"is_remote"`
	Description  string    `form:"description" validate:"max=1000"`
}

type FeedbackForm struct {
	Feedback string `form:"feedback" validate:"required,max=2000"`
	Rating   int    `form:"rating" validate:"min=0,max=5"`
}

type StudentProfileForm struct {
	Bio              string                `form:"bio" validate:"max=2000"`
	TasksDescription string                `form:"tasks" validate:"max=2000"`
	Goal             string                `form:"goal" validate:"max=2000"`
	EducationLevel   string                `form:"education_level" validate:"required,max=100"`
	AvailableHours   []model.AvailableHour `form:"available_hours" validate:"required,min=1,dive"`
}

type TutorProfileForm struct {
	Bio            string                `form:"bio" validate:"required,max=2000"`
	SubjectIDs     []int64               `form:"subjects" validate:"dive,gt=0"`
	AvailableHours []model.AvailableHour `form:"available_hours" validate:"dive"`
}

type ChildForm struct {
	Email string `form:"email" validate:"required,email"`
}

// checkHours каждый диапазон в формате ЧЧ:ММ и начало раньше конца
func checkHours(hours []model.AvailableHour) error {
	for _, h := range hours {
		start, err := time.Parse(ClockLayout, h.StartTime)
		if err != nil {
			return fieldError("available_hours", "datetime")
		}
		end, err := time.Parse(ClockLayout, h.EndTime)
		if err != nil {
			return fieldError("available_hours", "datetime")
		}
		if !end.After(start) {
			return fieldError("available_hours", "after_start")
		}
	}
	return nil
}
