package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// Payment оплата урока
type Payment struct {
	ID          int64         `json:"id,omitempty"`
	LessonID    int64         `json:"lesson"`
	Status      PaymentStatus `json:"payment_status"`
	Amount      float64       `json:"amount"`
	PaymentDate time.Time     `json:"payment_date"`
}

// IsPaid проверяет статус оплаты
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}
