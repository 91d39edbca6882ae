package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/metrics"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// SessionSource активные сессии и проверка их токенов
type SessionSource interface {
	Active(ctx context.Context) ([]model.Session, error)
}

type SessionChecker interface {
	Check(ctx context.Context, telegramID int64) (*model.Session, error)
}

// LessonSource текущий пользователь и его ближайшие уроки
type LessonSource interface {
	Current(ctx context.Context, sess *model.Session) (*model.User, error)
	StartingSoon(ctx context.Context, sess *model.Session, role model.Role, window time.Duration) ([]model.Lesson, error)
}

// NotifyFunc отправляет напоминание об уроке в чат пользователя
type NotifyFunc func(ctx context.Context, sess *model.Session, lesson model.Lesson) error

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	window   time.Duration
	sessions SessionSource
	guard    SessionChecker
	lessons  LessonSource
	notify   NotifyFunc
	logger   *zap.Logger
	now      func() time.Time

	mu sync.Mutex
	// уже отправленные напоминания: ключ telegram_id/lesson_id, значение начало урока
	sent map[string]time.Time
}

// NewScheduler создаёт новый планировщик; spec в формате cron с секундами
func NewScheduler(spec string, window time.Duration, sessions SessionSource, guard SessionChecker, lessons LessonSource, notify NotifyFunc, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:     spec,
		window:   window,
		sessions: sessions,
		guard:    guard,
		lessons:  lessons,
		notify:   notify,
		logger:   logger,
		now:      time.Now,
		sent:     make(map[string]time.Time),
	}
}

// Start регистрирует задачи и запускает cron
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.String("schedule", s.spec), zap.Duration("window", s.window))

	if _, err := s.cron.AddFunc(s.spec, func() { s.RemindUpcoming(ctx) }); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", s.spec, err)
	}
	s.cron.Start()
	return nil
}

// Stop останавливает cron и ждёт завершения текущей задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

// RemindUpcoming рассылает напоминания о подтверждённых уроках, которые скоро начнутся
func (s *Scheduler) RemindUpcoming(ctx context.Context) {
	active, err := s.sessions.Active(ctx)
	if err != nil {
		s.logger.Error("Failed to list sessions", zap.Error(err))
		return
	}

	s.prune()

	sent := 0
	for _, a := range active {
		if ctx.Err() != nil {
			return
		}
		sent += s.remindUser(ctx, a.TelegramID)
	}

	if sent > 0 {
		s.logger.Info("Lesson reminders sent", zap.Int("count", sent), zap.Int("sessions", len(active)))
	}
}

func (s *Scheduler) remindUser(ctx context.Context, telegramID int64) int {
	log := s.logger.With(zap.Int64("telegram_id", telegramID))

	// сессия без действующих токенов просто пропускается
	sess, err := s.guard.Check(ctx, telegramID)
	if err != nil {
		log.Debug("Skipping session", zap.Error(err))
		return 0
	}

	user, err := s.lessons.Current(ctx, sess)
	if err != nil {
		log.Warn("Failed to load user", zap.Error(err))
		return 0
	}

	soon, err := s.lessons.StartingSoon(ctx, sess, user.Role(), s.window)
	if err != nil {
		log.Warn("Failed to load lessons", zap.Error(err))
		return 0
	}

	count := 0
	for _, l := range soon {
		if !s.markSent(telegramID, l) {
			continue
		}
		if err := s.notify(ctx, sess, l); err != nil {
			log.Warn("Failed to send reminder", zap.Int64("lesson_id", l.ID), zap.Error(err))
			s.unmark(telegramID, l)
			continue
		}
		metrics.ReminderSent()
		count++
	}
	return count
}

func reminderKey(telegramID int64, l model.Lesson) string {
	return fmt.Sprintf("%d/%d", telegramID, l.ID)
}

// markSent false если напоминание об этом уроке уже отправлялось
func (s *Scheduler) markSent(telegramID int64, l model.Lesson) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := reminderKey(telegramID, l)
	if start, ok := s.sent[key]; ok && start.Equal(l.StartTime) {
		return false
	}
	s.sent[key] = l.StartTime
	return true
}

func (s *Scheduler) unmark(telegramID int64, l model.Lesson) {
	s.mu.Lock()
	delete(s.sent, reminderKey(telegramID, l))
	s.mu.Unlock()
}

// prune забывает уроки, которые уже начались
func (s *Scheduler) prune() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, start := range s.sent {
		if !start.After(now) {
			delete(s.sent, key)
		}
	}
}
