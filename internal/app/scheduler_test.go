package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

type fakeSessions []model.Session

func (f fakeSessions) Active(context.Context) ([]model.Session, error) { return f, nil }

type fakeGuard struct{ expired map[int64]bool }

func (g fakeGuard) Check(_ context.Context, id int64) (*model.Session, error) {
	if g.expired[id] {
		return nil, errors.New("login required")
	}
	return &model.Session{TelegramID: id, AccessToken: "t"}, nil
}

type fakeLessons struct {
	soon []model.Lesson
	role model.Role
}

func (f *fakeLessons) Current(context.Context, *model.Session) (*model.User, error) {
	if f.role == model.RoleTutor {
		return &model.User{Profile: &model.TutorProfile{ID: 1}}, nil
	}
	return &model.User{Profile: &model.StudentProfile{ID: 1}}, nil
}

func (f *fakeLessons) StartingSoon(context.Context, *model.Session, model.Role, time.Duration) ([]model.Lesson, error) {
	return f.soon, nil
}

type recorder struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (r *recorder) notify(_ context.Context, sess *model.Session, l model.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("telegram down")
	}
	r.sent = append(r.sent, reminderKey(sess.TelegramID, l))
	return nil
}

func TestRemindUpcomingSendsOnce(t *testing.T) {
	start := time.Now().Add(10 * time.Minute)
	lessons := &fakeLessons{soon: []model.Lesson{{ID: 7, StartTime: start, EndTime: start.Add(time.Hour), IsAccepted: true}}}
	rec := &recorder{}

	s := NewScheduler("0 * * * * *", 30*time.Minute,
		fakeSessions{{TelegramID: 1}, {TelegramID: 2}},
		fakeGuard{expired: map[int64]bool{2: true}},
		lessons, rec.notify, zap.NewNop())

	s.RemindUpcoming(context.Background())
	s.RemindUpcoming(context.Background())

	assert.Equal(t, []string{"1/7"}, rec.sent)
}

func TestRemindUpcomingResendsAfterReschedule(t *testing.T) {
	start := time.Now().Add(10 * time.Minute)
	lessons := &fakeLessons{soon: []model.Lesson{{ID: 7, StartTime: start, IsAccepted: true}}}
	rec := &recorder{}
	s := NewScheduler("0 * * * * *", time.Hour, fakeSessions{{TelegramID: 1}}, fakeGuard{}, lessons, rec.notify, zap.NewNop())

	s.RemindUpcoming(context.Background())
	lessons.soon[0].StartTime = start.Add(15 * time.Minute)
	s.RemindUpcoming(context.Background())

	assert.Len(t, rec.sent, 2)
}

func TestRemindUpcomingRetriesFailedDelivery(t *testing.T) {
	start := time.Now().Add(10 * time.Minute)
	lessons := &fakeLessons{soon: []model.Lesson{{ID: 3, StartTime: start, IsAccepted: true}}, role: model.RoleTutor}
	rec := &recorder{fail: true}
	s := NewScheduler("0 * * * * *", time.Hour, fakeSessions{{TelegramID: 5}}, fakeGuard{}, lessons, rec.notify, zap.NewNop())

	s.RemindUpcoming(context.Background())
	require.Empty(t, rec.sent)

	rec.fail = false
	s.RemindUpcoming(context.Background())
	assert.Equal(t, []string{"5/3"}, rec.sent)
}

func TestPruneForgetsStartedLessons(t *testing.T) {
	s := NewScheduler("0 * * * * *", time.Hour, fakeSessions{}, fakeGuard{}, &fakeLessons{}, (&recorder{}).notify, zap.NewNop())
	past := model.Lesson{ID: 1, StartTime: time.Now().Add(-time.Minute)}
	future := model.Lesson{ID: 2, StartTime: time.Now().Add(time.Hour)}
	require.True(t, s.markSent(1, past))
	require.True(t, s.markSent(1, future))

	s.prune()

	assert.True(t, s.markSent(1, past))
	assert.False(t, s.markSent(1, future))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler("every minute", time.Hour, fakeSessions{}, fakeGuard{}, &fakeLessons{}, (&recorder{}).notify, zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
}
