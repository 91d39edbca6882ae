package service

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongRole действие недоступно для роли пользователя
	ErrWrongRole = errors.New("action not allowed for role")
	// ErrLessonClosed урок уже закончился или подтверждён
	ErrLessonClosed = errors.New("lesson is closed for changes")
	// ErrPriceOutOfRange цена вне диапазона репетитора
	ErrPriceOutOfRange = errors.New("price out of tutor range")
	// ErrSubjectNotOffered репетитор не ведёт выбранный предмет
	ErrSubjectNotOffered = errors.New("subject not offered by tutor")
)

// PriceRangeError цена вне диапазона; при бронировании повторная отправка проходит
type PriceRangeError struct {
	Min, Max float64
}

func (e *PriceRangeError) Error() string {
	return fmt.Sprintf("price must be between %.2f and %.2f", e.Min, e.Max)
}

func (e *PriceRangeError) Unwrap() error {
	return ErrPriceOutOfRange
}
