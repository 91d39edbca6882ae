package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/metrics"
)

var (
	// ErrUnauthorized токен отклонён сервером (401)
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden действие запрещено для пользователя (403)
	ErrForbidden = errors.New("forbidden")
)

// APIError ответ API с кодом ошибки
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Is сопоставляет 401 с ErrUnauthorized и 403 с ErrForbidden
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

// UserMessage текст ошибки от сервера, если он есть
func UserMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// Client клиент REST API платформы репетиторов
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New создаёт клиента; baseURL без завершающего слэша
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("api"),
	}
}

type request struct {
	method string
	path   string
	token  string
	query  url.Values
	body   any

	// для multipart
	rawBody     io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.baseURL + "/" + strings.TrimLeft(r.path, "/")
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := "application/json"
	switch {
	case r.rawBody != nil:
		body = r.rawBody
		contentType = r.contentType
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	endpoint := endpointLabel(r.path)
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequest(r.method, endpoint, 0)
		return fmt.Errorf("%s %s: %w", r.method, endpoint, err)
	}
	defer resp.Body.Close()

	metrics.APIRequest(r.method, endpoint, resp.StatusCode)
	c.logger.Debug("API request",
		zap.String("method", r.method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", req.Header.Get("X-Request-ID")))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// errorMessage достаёт поле error или detail из тела ответа
func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	switch {
	case body.Error != "":
		return body.Error
	case body.Detail != "":
		return body.Detail
	default:
		return body.Message
	}
}

var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// endpointLabel заменяет числовые id на {id}, чтобы не плодить метки
func endpointLabel(path string) string {
	path = "/" + strings.TrimLeft(path, "/")
	for idSegment.MatchString(path) {
		path = idSegment.ReplaceAllString(path, "/{id}$1")
	}
	return strings.TrimLeft(path, "/")
}
