package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

type LessonService struct {
	api    *apiclient.Client
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time

	// последний черновик, отклонённый по цене: повторная отправка того же черновика проходит
	mu       sync.Mutex
	warnings map[int64]model.LessonDraft
}

func NewLessonService(api *apiclient.Client, loc *time.Location, logger *zap.Logger) *LessonService {
	if loc == nil {
		loc = time.Local
	}
	return &LessonService{
		api:      api,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
		warnings: make(map[int64]model.LessonDraft),
	}
}

// Location часовой пояс, в котором вводятся и показываются даты
func (s *LessonService) Location() *time.Location {
	return s.loc
}

// Buckets уроки пользователя, разложенные по вкладкам
func (s *LessonService) Buckets(ctx context.Context, sess *model.Session, role model.Role) (lessons.Buckets, error) {
	list, err := s.api.Lessons(ctx, sess.AccessToken, role)
	if err != nil {
		return lessons.Buckets{}, err
	}
	return lessons.Split(s.now(), list), nil
}

// List плоский список уроков роли
func (s *LessonService) List(ctx context.Context, sess *model.Session, role model.Role) ([]model.Lesson, error) {
	return s.api.Lessons(ctx, sess.AccessToken, role)
}

func (s *LessonService) Get(ctx context.Context, sess *model.Session, id int64) (*model.Lesson, error) {
	return s.api.Lesson(ctx, sess.AccessToken, id)
}

// Book бронирует урок у репетитора от имени ученика.
// Цена вне диапазона предмета отклоняется один раз; тот же черновик со второй попытки уходит на сервер.
func (s *LessonService) Book(ctx context.Context, sess *model.Session, user *model.User, tutor *model.User, form BookingForm) (*model.Lesson, error) {
	student, ok := user.Student()
	if !ok {
		return nil, ErrWrongRole
	}
	tutorProfile, ok := tutor.Tutor()
	if !ok {
		return nil, fmt.Errorf("book lesson: user %d is not a tutor", tutor.ID)
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}
	if _, _, err := form.Interval(s.loc); err != nil {
		return nil, err
	}

	draft := model.LessonDraft{
		StudentID:    student.ID,
		TutorID:      tutorProfile.ID,
		Date:         form.Date,
		StartTime:    form.StartTime,
		EndTime:      form.EndTime,
		SubjectID:    form.SubjectID,
		PricePerHour: form.PricePerHour,
		IsRemote:     form.IsRemote,
		AcceptedBy:   user.Role().Counterpart(),
		Description:  form.Description,
	}

	price, offered := tutorProfile.PriceFor(form.SubjectID)
	if !offered && len(tutorProfile.SubjectPrices) > 0 {
		return nil, ErrSubjectNotOffered
	}
	if offered && !price.InRange(form.PricePerHour) && !s.confirmWarning(sess.TelegramID, draft) {
		return nil, &PriceRangeError{Min: price.PriceMin, Max: price.PriceMax}
	}

	lesson, err := s.api.CreateLesson(ctx, sess.AccessToken, draft)
	if err != nil {
		return nil, err
	}
	s.clearWarning(sess.TelegramID)

	s.logger.Info("Lesson booked",
		zap.Int64("telegram_id", sess.TelegramID),
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("tutor_id", tutorProfile.ID))
	return lesson, nil
}

// confirmWarning true если такой же черновик уже получал предупреждение; иначе запоминает его
func (s *LessonService) confirmWarning(telegramID int64, draft model.LessonDraft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.warnings[telegramID]; ok && prev == draft {
		return true
	}
	s.warnings[telegramID] = draft
	return false
}

func (s *LessonService) clearWarning(telegramID int64) {
	s.mu.Lock()
	delete(s.warnings, telegramID)
	s.mu.Unlock()
}

// Accept подтверждает урок стороной role
func (s *LessonService) Accept(ctx context.Context, sess *model.Session, role model.Role, lesson *model.Lesson) error {
	if !lessons.CanAccept(lesson, role, s.now()) {
		return ErrLessonClosed
	}
	if err := s.api.AcceptLesson(ctx, sess.AccessToken, lesson.ID); err != nil {
		return err
	}
	lesson.IsAccepted = true
	s.logger.Info("Lesson accepted", zap.Int64("lesson_id", lesson.ID), zap.String("role", string(role)))
	return nil
}

// Propose ученик повторно предлагает урок репетитору
func (s *LessonService) Propose(ctx context.Context, sess *model.Session, role model.Role, lesson *model.Lesson) error {
	if !lessons.CanPropose(lesson, role, s.now()) {
		return ErrLessonClosed
	}
	return s.api.ProposeLesson(ctx, sess.AccessToken, lesson.ID)
}

// Update меняет урок; подтверждать изменения будет вторая сторона.
// Цена вне диапазона репетитора здесь не пропускается.
func (s *LessonService) Update(ctx context.Context, sess *model.Session, user *model.User, lesson *model.Lesson, prices []model.SubjectPrice, form LessonUpdateForm) (*model.Lesson, error) {
	role := user.Role()
	if !lessons.CanUpdate(lesson, role, s.now()) {
		return nil, ErrLessonClosed
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}
	for _, p := range prices {
		if p.Subject.ID == form.SubjectID && !p.InRange(form.PricePerHour) {
			return nil, &PriceRangeError{Min: p.PriceMin, Max: p.PriceMax}
		}
	}

	updated, err := s.api.UpdateLesson(ctx, sess.AccessToken, lesson.ID, model.LessonUpdate{
		Description:  form.Description,
		SubjectID:    form.SubjectID,
		StartTime:    form.StartTime,
		EndTime:      form.EndTime,
		PricePerHour: form.PricePerHour,
		IsRemote:     form.IsRemote,
		AcceptedBy:   lessons.NextAcceptor(role),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lesson updated", zap.Int64("lesson_id", lesson.ID), zap.String("role", string(role)))
	return updated, nil
}

func (s *LessonService) LeaveFeedback(ctx context.Context, sess *model.Session, lesson *model.Lesson, form FeedbackForm) error {
	if !lessons.CanLeaveFeedback(lesson, s.now()) {
		return ErrLessonClosed
	}
	if err := validateForm(form); err != nil {
		return err
	}
	if err := s.api.LeaveFeedback(ctx, sess.AccessToken, lesson.ID, model.LessonFeedback{Feedback: form.Feedback, Rating: form.Rating}); err != nil {
		return err
	}
	lesson.Feedback = form.Feedback
	rating := form.Rating
	lesson.Rating = &rating
	return nil
}

func (s *LessonService) UploadDocument(ctx context.Context, sess *model.Session, lessonID int64, filename string, content io.Reader) (*model.LessonDocument, error) {
	return s.api.UploadDocument(ctx, sess.AccessToken, lessonID, filename, content)
}

// StartingSoon подтверждённые уроки, которые начнутся в пределах window
func (s *LessonService) StartingSoon(ctx context.Context, sess *model.Session, role model.Role, window time.Duration) ([]model.Lesson, error) {
	list, err := s.api.Lessons(ctx, sess.AccessToken, role)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var soon []model.Lesson
	for i := range list {
		if lessons.StartsWithin(&list[i], now, window) {
			soon = append(soon, list[i])
		}
	}
	return soon, nil
}
