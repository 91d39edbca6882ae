package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

type StudentProfileUpdate struct {
	Bio              string                `json:"bio"`
	TasksDescription string                `json:"tasks_description"`
	Goal             string                `json:"goal"`
	EducationLevel   string                `json:"education_level"`
	AvailableHours   []model.AvailableHour `json:"available_hours"`
}

type TutorProfileUpdate struct {
	Bio               string                    `json:"bio"`
	AvailableHours    []model.AvailableHour     `json:"available_hours"`
	Subjects          []int64                   `json:"subjects"`
	WorkingExperience []model.WorkingExperience `json:"working_experience"`
}

type ParentProfileUpdate struct {
	Children []string `json:"children"`
}

// Me текущий пользователь
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	err := c.do(ctx, request{method: http.MethodGet, path: "api/tutoring/user/me/", token: token}, &user)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &user, nil
}

func (c *Client) UpdateStudentProfile(ctx context.Context, token string, profileID int64, upd StudentProfileUpdate) error {
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("api/tutoring/students/%d/", profileID),
		token:  token,
		body:   upd,
	}, nil)
	if err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}

func (c *Client) UpdateTutorProfile(ctx context.Context, token string, profileID int64, upd TutorProfileUpdate) error {
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("api/tutoring/tutors/%d/", profileID),
		token:  token,
		body:   upd,
	}, nil)
	if err != nil {
		return fmt.Errorf("update tutor profile: %w", err)
	}
	return nil
}

func (c *Client) UpdateParentProfile(ctx context.Context, token string, profileID int64, upd ParentProfileUpdate) error {
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("api/tutoring/parents/%d/", profileID),
		token:  token,
		body:   upd,
	}, nil)
	if err != nil {
		return fmt.Errorf("update parent profile: %w", err)
	}
	return nil
}

// Subjects справочник предметов
func (c *Client) Subjects(ctx context.Context, token string) ([]model.Subject, error) {
	var subjects []model.Subject
	err := c.do(ctx, request{method: http.MethodGet, path: "api/tutoring/subjects/", token: token}, &subjects)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// Tutors поиск репетиторов. При RemoteOnly город не передаётся.
func (c *Client) Tutors(ctx context.Context, token string, f model.TutorFilter) ([]model.User, error) {
	q := url.Values{}
	if f.RemoteOnly {
		q.Set("remote_only", "true")
	} else if city := strings.TrimSpace(f.City); city != "" {
		q.Set("city", city)
	}
	if f.Subject != "" {
		q.Set("subject", f.Subject)
	}
	if f.MinPrice != "" {
		q.Set("min_price", f.MinPrice)
	}
	if f.MaxPrice != "" {
		q.Set("max_price", f.MaxPrice)
	}

	var tutors []model.User
	err := c.do(ctx, request{method: http.MethodGet, path: "api/tutoring/tutors", token: token, query: q}, &tutors)
	if err != nil {
		return nil, fmt.Errorf("search tutors: %w", err)
	}
	return tutors, nil
}
