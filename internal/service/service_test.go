package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/chat"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/session"
)

// fakeAPI записывает тела запросов по пути
type fakeAPI struct {
	mu     sync.Mutex
	bodies map[string][]map[string]any
	mux    *http.ServeMux
}

func newFakeAPI(t *testing.T) (*fakeAPI, *apiclient.Client) {
	f := &fakeAPI{bodies: map[string][]map[string]any{}, mux: http.NewServeMux()}
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)
	return f, apiclient.New(srv.URL, 5*time.Second, zap.NewNop())
}

func (f *fakeAPI) handle(path string, status int, resp any) {
	f.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.bodies[path] = append(f.bodies[path], body)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	})
}

func (f *fakeAPI) calls(path string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

type memStore struct {
	mu   sync.Mutex
	data map[int64]model.Session
}

func (m *memStore) Get(_ context.Context, id int64) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.data[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (m *memStore) Save(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.TelegramID] = *s
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memStore) List(context.Context) ([]model.Session, error) { return nil, nil }

var (
	sess    = &model.Session{TelegramID: 1, AccessToken: "token"}
	student = &model.User{ID: 1, City: "Wrocław", Profile: &model.StudentProfile{ID: 10, EducationLevel: "school"}}
	tutor   = &model.User{ID: 2, Profile: &model.TutorProfile{
		ID: 20, Bio: "physics",
		SubjectPrices: []model.SubjectPrice{{Subject: model.Subject{ID: 3, Name: "Physics"}, PriceMin: 50, PriceMax: 100}},
	}}
)

func bookingForm(price float64) BookingForm {
	return BookingForm{
		SubjectID:    3,
		Date:         "2030-01-10",
		StartTime:    "10:00",
		EndTime:      "11:30",
		PricePerHour: price,
	}
}

func TestLoginStoresSession(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("/api/login/", http.StatusOK, map[string]string{"access": "a", "refresh": "r"})
	api.handle("/api/tutoring/user/me/", http.StatusOK, map[string]any{
		"id": 1, "email": "anna@example.com", "roles": []map[string]int{{"id": 1}},
	})

	store := &memStore{data: map[int64]model.Session{}}
	svc := NewUserService(client, session.NewService(store, zap.NewNop()), zap.NewNop())

	user, err := svc.Login(context.Background(), 1, 100, LoginForm{Username: " anna ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, user.Role())

	saved := store.data[1]
	assert.Equal(t, "a", saved.AccessToken)
	assert.Equal(t, "r", saved.RefreshToken)
	assert.Equal(t, "anna@example.com", saved.Email)
	assert.Equal(t, int64(100), saved.ChatID)
	assert.Equal(t, "anna", api.calls("/api/login/")[0]["username"])
}

func TestLoginValidation(t *testing.T) {
	_, client := newFakeAPI(t)
	svc := NewUserService(client, session.NewService(&memStore{data: map[int64]model.Session{}}, zap.NewNop()), zap.NewNop())

	_, err := svc.Login(context.Background(), 1, 1, LoginForm{Username: "anna"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.First().Field)
	assert.Equal(t, "required", ve.First().Rule)
}

func TestBookWarnsOnceAboutPrice(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("/api/tutoring/lessons-create/", http.StatusCreated, map[string]any{"id": 77})
	svc := NewLessonService(client, time.UTC, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Book(ctx, sess, student, tutor, bookingForm(150))
	var pre *PriceRangeError
	require.ErrorAs(t, err, &pre)
	assert.True(t, errors.Is(err, ErrPriceOutOfRange))
	assert.Equal(t, 50.0, pre.Min)
	assert.Empty(t, api.calls("/api/tutoring/lessons-create/"))

	lesson, err := svc.Book(ctx, sess, student, tutor, bookingForm(150))
	require.NoError(t, err)
	assert.Equal(t, int64(77), lesson.ID)

	calls := api.calls("/api/tutoring/lessons-create/")
	require.Len(t, calls, 1)
	assert.Equal(t, "Tutor", calls[0]["accepted_by"])
	assert.Equal(t, float64(10), calls[0]["student"])
	assert.Equal(t, float64(20), calls[0]["tutor"])
	assert.Equal(t, "2030-01-10", calls[0]["date"])

	// после успешной отправки предупреждение снова срабатывает
	_, err = svc.Book(ctx, sess, student, tutor, bookingForm(150))
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}

func TestBookChangedDraftWarnsAgain(t *testing.T) {
	_, client := newFakeAPI(t)
	svc := NewLessonService(client, time.UTC, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Book(ctx, sess, student, tutor, bookingForm(150))
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
	_, err = svc.Book(ctx, sess, student, tutor, bookingForm(160))
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}

func TestBookRejectsBadInterval(t *testing.T) {
	_, client := newFakeAPI(t)
	svc := NewLessonService(client, time.UTC, zap.NewNop())

	form := bookingForm(60)
	form.EndTime = "09:00"
	_, err := svc.Book(context.Background(), sess, student, tutor, form)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "end_time", ve.First().Field)

	_, err = svc.Book(context.Background(), sess, tutor, tutor, bookingForm(60))
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestUpdateFlipsAcceptedBy(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("/api/tutoring/lessons/5/", http.StatusOK, map[string]any{"id": 5, "accepted_by": "Student"})
	svc := NewLessonService(client, time.UTC, zap.NewNop())

	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	lesson := &model.Lesson{ID: 5, StartTime: start, EndTime: start.Add(time.Hour)}
	form := LessonUpdateForm{SubjectID: 3, StartTime: start, EndTime: start.Add(2 * time.Hour), PricePerHour: 70}

	updated, err := svc.Update(context.Background(), sess, tutor, lesson, nil, form)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, updated.AcceptedBy)
	assert.Equal(t, "Student", api.calls("/api/tutoring/lessons/5/")[0]["accepted_by"])

	tp, _ := tutor.Tutor()
	form.PricePerHour = 500
	_, err = svc.Update(context.Background(), sess, student, lesson, tp.SubjectPrices, form)
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	list := []model.Lesson{
		{ID: 1, StartTime: now.Add(-3 * time.Hour), EndTime: now.Add(-2 * time.Hour), PricePerHour: 100},
		{ID: 2, StartTime: now.Add(-5 * time.Hour), EndTime: now.Add(-3 * time.Hour), PricePerHour: 40},
		{ID: 3, StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour), PricePerHour: 60},
		{ID: 4, StartTime: now.Add(-time.Hour), EndTime: now.Add(-2 * time.Hour), PricePerHour: 60},
	}
	payments := []model.Payment{
		{LessonID: 2, Status: model.PaymentStatusPaid},
		{LessonID: 1, Status: model.PaymentStatusUnpaid},
	}

	sum := Summarize(list, payments, now)
	require.Len(t, sum.Paid, 1)
	assert.True(t, sum.Paid[0].Paid)
	assert.InDelta(t, 80, sum.PaidTotal, 1e-9)
	assert.Len(t, sum.Unpaid, 3)
	assert.InDelta(t, 100, sum.UnpaidBalance, 1e-9, "future lesson and negative length lesson add nothing")
}

func TestPaymentSummaryFetchesConcurrently(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("/api/tutoring/tutor/lessons/", http.StatusOK, []map[string]any{
		{"id": 1, "start_time": "2020-01-01T10:00:00Z", "end_time": "2020-01-01T11:00:00Z", "price_per_hour": 90},
	})
	api.handle("/api/tutoring/lesson-payments/", http.StatusOK, []map[string]any{})

	svc := NewPaymentService(client, zap.NewNop())
	sum, err := svc.Summary(context.Background(), sess, model.RoleTutor)
	require.NoError(t, err)
	assert.InDelta(t, 90, sum.UnpaidBalance, 1e-9)
}

func TestPay(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("/api/tutoring/lesson-payments/", http.StatusCreated, map[string]any{"id": 9, "lesson": 4, "payment_status": "paid", "amount": 45})
	svc := NewPaymentService(client, zap.NewNop())

	start := time.Now().Add(-2 * time.Hour)
	lesson := &model.Lesson{ID: 4, StartTime: start, EndTime: start.Add(30 * time.Minute), PricePerHour: 90}

	_, err := svc.Pay(context.Background(), sess, model.RoleTutor, lesson)
	assert.ErrorIs(t, err, ErrWrongRole)

	_, err = svc.Pay(context.Background(), sess, model.RoleStudent, lesson)
	require.NoError(t, err)
	assert.True(t, lesson.Paid)

	body := api.calls("/api/tutoring/lesson-payments/")[0]
	assert.Equal(t, "paid", body["payment_status"])
	assert.Equal(t, float64(4), body["lesson"])
	assert.InDelta(t, 45, body["amount"], 1e-9)

	_, err = svc.Pay(context.Background(), sess, model.RoleStudent, lesson)
	assert.ErrorIs(t, err, ErrLessonClosed)
}

func TestIsPaid(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("/api/tutoring/lesson-payments/", http.StatusOK, []map[string]any{
		{"id": 1, "lesson": 4, "payment_status": "unpaid", "amount": 45},
		{"id": 2, "lesson": 5, "payment_status": "paid", "amount": 45},
	})
	svc := NewPaymentService(client, zap.NewNop())

	paid, err := svc.IsPaid(context.Background(), sess, 5)
	require.NoError(t, err)
	assert.True(t, paid)

	paid, err = svc.IsPaid(context.Background(), sess, 4)
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestSortTutors(t *testing.T) {
	mk := func(id int64, city string, r float64) model.User {
		return model.User{ID: id, City: city, Profile: &model.TutorProfile{ID: id, AverageRating: r}}
	}
	tutors := []model.User{
		mk(1, "Gdańsk", 4.0),
		mk(2, "Wrocław", 4.0),
		mk(3, "Poznań", 4.9),
		mk(4, "wrocław ", 3.5),
	}

	SortTutors(tutors, "Wrocław")

	var order []int64
	for _, u := range tutors {
		order = append(order, u.ID)
	}
	assert.Equal(t, []int64{3, 2, 1, 4}, order)

	found, ok := Find(tutors, 4)
	require.True(t, ok)
	assert.Equal(t, int64(4), found.ID)
}

func TestProfileForms(t *testing.T) {
	err := checkHours([]model.AvailableHour{{DayOfWeek: "Monday", StartTime: "18:00", EndTime: "17:00"}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "after_start", ve.First().Rule)

	assert.NoError(t, checkHours([]model.AvailableHour{{DayOfWeek: "Monday", StartTime: "08:00", EndTime: "09:30"}}))

	err = validateForm(RegisterForm{Username: "an", Email: "nope", FirstName: "A", LastName: "B", Password: "12345678", Role: model.RoleTutor})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "username", ve.Fields[0].Field)
	assert.Equal(t, "email", ve.Fields[1].Field)

	assert.Error(t, validateForm(FeedbackForm{Feedback: "ok", Rating: 6}))
	assert.NoError(t, validateForm(FeedbackForm{Feedback: "ok", Rating: 0}))
}

func TestChatOpenRequiresEmail(t *testing.T) {
	_, client := newFakeAPI(t)
	svc := NewChatService(client, chat.NewHub("ws://127.0.0.1:1", nil, zap.NewNop()), zap.NewNop())

	_, err := svc.Open(context.Background(), &model.Session{TelegramID: 1}, "bob")
	assert.ErrorIs(t, err, ErrNoEmail)

	assert.ErrorIs(t, svc.Send(1, "hi"), chat.ErrNoStream)
	assert.Empty(t, svc.Recipient(1))
}
