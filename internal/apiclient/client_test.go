package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginAndBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "anna", body["username"])
		writeJSON(w, http.StatusOK, map[string]string{"access": "a1", "refresh": "r1"})
	})
	mux.HandleFunc("/api/tutoring/user/me/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 3, "email": "anna@example.com",
			"roles":           []map[string]int{{"id": 1}},
			"student_profile": map[string]any{"id": 8, "education_level": "university"},
		})
	})
	c := newTestClient(t, mux)

	tokens, err := c.Login(context.Background(), "anna", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a1", tokens.Access)

	user, err := c.Me(context.Background(), tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, user.Role())
}

func TestErrorsCarryServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tutoring/lessons-create/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Tutor is busy at this time"})
	})
	mux.HandleFunc("/api/tutoring/user/me/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
	})
	c := newTestClient(t, mux)

	_, err := c.CreateLesson(context.Background(), "t", model.LessonDraft{TutorID: 1})
	require.Error(t, err)
	msg, ok := UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Tutor is busy at this time", msg)
	assert.False(t, errors.Is(err, ErrUnauthorized))

	_, err = c.Me(context.Background(), "expired")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrForbidden))

	forbidden := &APIError{Status: http.StatusForbidden, Message: "You do not have permission to perform this action."}
	assert.True(t, errors.Is(forbidden, ErrForbidden))
	assert.False(t, errors.Is(forbidden, ErrUnauthorized))
}

func TestVerifyTokenTreatsRejectionAsInvalid(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/verify/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch body["token"] {
		case "good":
			writeJSON(w, http.StatusOK, map[string]bool{"isValid": true})
		case "stale":
			writeJSON(w, http.StatusOK, map[string]bool{"isValid": false})
		case "banned":
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "forbidden"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid"})
		}
	})
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access": "fresh"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	ok, err := c.VerifyToken(ctx, "good")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.VerifyToken(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.VerifyToken(ctx, "garbage")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.VerifyToken(ctx, "banned")
	require.NoError(t, err)
	assert.False(t, ok)

	access, err := c.RefreshToken(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "fresh", access)
}

func TestLessonsPathByRole(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tutoring/tutor/lessons/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{
			"id": 12, "start_time": "2026-05-12T10:00:00Z", "end_time": "2026-05-12T11:00:00Z",
			"price_per_hour": 70, "is_accepted": false, "accepted_by": "Tutor",
			"student": map[string]any{"id": 4, "user_full_name": "Jan Kowalski"},
		}})
	})
	c := newTestClient(t, mux)

	lessons, err := c.Lessons(context.Background(), "t", model.RoleTutor)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, model.RoleTutor, lessons[0].AcceptedBy)
	assert.Equal(t, "Jan Kowalski", lessons[0].Counterparty(model.RoleTutor))

	_, err = c.Lessons(context.Background(), "t", model.RoleUnknown)
	assert.Error(t, err)
}

func TestTutorSearchDropsCityForRemote(t *testing.T) {
	var got []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tutoring/tutors", func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, []any{})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.Tutors(ctx, "t", model.TutorFilter{City: "Gdańsk", Subject: "Math", MinPrice: "40"})
	require.NoError(t, err)
	_, err = c.Tutors(ctx, "t", model.TutorFilter{City: "Gdańsk", RemoteOnly: true})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Contains(t, got[0], "city=Gda%C5%84sk")
	assert.Contains(t, got[0], "min_price=40")
	assert.NotContains(t, got[1], "city=")
	assert.Contains(t, got[1], "remote_only=true")
}

func TestUploadDocumentMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tutoring/lessons/5/documents/", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "notes.pdf", header.Filename)
		assert.Equal(t, "%PDF", string(data))
		writeJSON(w, http.StatusCreated, map[string]any{"id": 1, "document": "/media/notes.pdf"})
	})
	c := newTestClient(t, mux)

	doc, err := c.UploadDocument(context.Background(), "t", 5, "notes.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "/media/notes.pdf", doc.Document)
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "api/tutoring/lessons/{id}/accept", endpointLabel("api/tutoring/lessons/42/accept"))
	assert.Equal(t, "api/tutoring/tutors/{id}/", endpointLabel("/api/tutoring/tutors/7/"))
	assert.Equal(t, "api/tutoring/subjects/", endpointLabel("api/tutoring/subjects/"))
}
