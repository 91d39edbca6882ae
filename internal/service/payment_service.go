package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// PaymentSummary оплаченные и неоплаченные уроки с суммами
type PaymentSummary struct {
	Paid   []model.Lesson
	Unpaid []model.Lesson

	// PaidTotal сумма по оплаченным урокам
	PaidTotal float64
	// UnpaidBalance сумма по закончившимся неоплаченным урокам
	UnpaidBalance float64
}

type PaymentService struct {
	api    *apiclient.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewPaymentService(api *apiclient.Client, logger *zap.Logger) *PaymentService {
	return &PaymentService{api: api, logger: logger, now: time.Now}
}

// Summary загружает уроки и платежи параллельно и считает итоги
func (s *PaymentService) Summary(ctx context.Context, sess *model.Session, role model.Role) (*PaymentSummary, error) {
	var (
		list     []model.Lesson
		payments []model.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.api.Lessons(gctx, sess.AccessToken, role)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.api.Payments(gctx, sess.AccessToken)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Summarize(list, payments, s.now()), nil
}

// IsPaid есть ли оплаченный платёж на урок
func (s *PaymentService) IsPaid(ctx context.Context, sess *model.Session, lessonID int64) (bool, error) {
	payments, err := s.api.Payments(ctx, sess.AccessToken)
	if err != nil {
		return false, err
	}
	for i := range payments {
		if payments[i].LessonID == lessonID && payments[i].IsPaid() {
			return true, nil
		}
	}
	return false, nil
}

// Summarize урок оплачен, если есть платёж со статусом paid на него
func Summarize(list []model.Lesson, payments []model.Payment, now time.Time) *PaymentSummary {
	paid := make(map[int64]bool, len(payments))
	for i := range payments {
		if payments[i].IsPaid() {
			paid[payments[i].LessonID] = true
		}
	}

	sum := &PaymentSummary{}
	for _, l := range list {
		if paid[l.ID] {
			l.Paid = true
			sum.Paid = append(sum.Paid, l)
			sum.PaidTotal += l.Amount()
			continue
		}
		sum.Unpaid = append(sum.Unpaid, l)
		if l.HasEnded(now) {
			sum.UnpaidBalance += l.Amount()
		}
	}
	return sum
}

// Pay ученик оплачивает урок на всю сумму
func (s *PaymentService) Pay(ctx context.Context, sess *model.Session, role model.Role, lesson *model.Lesson) (*model.Payment, error) {
	if role != model.RoleStudent {
		return nil, ErrWrongRole
	}
	if !lessons.CanPay(lesson, role, lesson.Paid) {
		return nil, ErrLessonClosed
	}

	payment, err := s.api.CreatePayment(ctx, sess.AccessToken, model.Payment{
		LessonID:    lesson.ID,
		Status:      model.PaymentStatusPaid,
		Amount:      lesson.Amount(),
		PaymentDate: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	lesson.Paid = true

	s.logger.Info("Lesson paid",
		zap.Int64("telegram_id", sess.TelegramID),
		zap.Int64("lesson_id", lesson.ID),
		zap.Float64("amount", lesson.Amount()))
	return payment, nil
}
