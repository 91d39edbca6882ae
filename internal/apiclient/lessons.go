package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// Lessons уроки текущего пользователя для его роли
func (c *Client) Lessons(ctx context.Context, token string, role model.Role) ([]model.Lesson, error) {
	if role == model.RoleUnknown {
		return nil, fmt.Errorf("list lessons: unknown role")
	}
	var lessons []model.Lesson
	path := fmt.Sprintf("api/tutoring/%s/lessons/", strings.ToLower(string(role)))
	if err := c.do(ctx, request{method: http.MethodGet, path: path, token: token}, &lessons); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

func (c *Client) Lesson(ctx context.Context, token string, id int64) (*model.Lesson, error) {
	var lesson model.Lesson
	path := fmt.Sprintf("api/tutoring/lessons/%d/", id)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, token: token}, &lesson); err != nil {
		return nil, fmt.Errorf("get lesson %d: %w", id, err)
	}
	return &lesson, nil
}

// CreateLesson бронирование урока
func (c *Client) CreateLesson(ctx context.Context, token string, draft model.LessonDraft) (*model.Lesson, error) {
	var lesson model.Lesson
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "api/tutoring/lessons-create/",
		token:  token,
		body:   draft,
	}, &lesson)
	if err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return &lesson, nil
}

func (c *Client) UpdateLesson(ctx context.Context, token string, id int64, upd model.LessonUpdate) (*model.Lesson, error) {
	var lesson model.Lesson
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("api/tutoring/lessons/%d/", id),
		token:  token,
		body:   upd,
	}, &lesson)
	if err != nil {
		return nil, fmt.Errorf("update lesson %d: %w", id, err)
	}
	return &lesson, nil
}

func (c *Client) AcceptLesson(ctx context.Context, token string, id int64) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("api/tutoring/lessons/%d/accept", id),
		token:  token,
	}, nil)
	if err != nil {
		return fmt.Errorf("accept lesson %d: %w", id, err)
	}
	return nil
}

func (c *Client) ProposeLesson(ctx context.Context, token string, id int64) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("api/tutoring/lessons/%d/proposition", id),
		token:  token,
	}, nil)
	if err != nil {
		return fmt.Errorf("propose lesson %d: %w", id, err)
	}
	return nil
}

func (c *Client) LeaveFeedback(ctx context.Context, token string, id int64, fb model.LessonFeedback) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("api/tutoring/lessons/%d/feedback/", id),
		token:  token,
		body:   fb,
	}, nil)
	if err != nil {
		return fmt.Errorf("leave feedback for lesson %d: %w", id, err)
	}
	return nil
}

// UploadDocument прикрепляет файл к уроку (multipart, поле document)
func (c *Client) UploadDocument(ctx context.Context, token string, id int64, filename string, content io.Reader) (*model.LessonDocument, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var doc model.LessonDocument
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        fmt.Sprintf("api/tutoring/lessons/%d/documents/", id),
		token:       token,
		rawBody:     &buf,
		contentType: mw.FormDataContentType(),
	}, &doc)
	if err != nil {
		return nil, fmt.Errorf("upload document to lesson %d: %w", id, err)
	}
	return &doc, nil
}
