package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Tokens пара токенов, выданная при входе
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterRequest данные регистрации; Roles - числовые id ролей
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Roles     []int  `json:"roles"`
}

// Login обменивает логин и пароль на пару токенов
func (c *Client) Login(ctx context.Context, username, password string) (*Tokens, error) {
	var tokens Tokens
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "api/login/",
		body:   map[string]string{"username": username, "password": password},
	}, &tokens)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if tokens.Access == "" || tokens.Refresh == "" {
		return nil, fmt.Errorf("login: empty tokens in response")
	}
	return &tokens, nil
}

// Register создаёт аккаунт и возвращает сообщение сервера
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "api/register/",
		body:   req,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	return resp.Message, nil
}

// VerifyToken проверяет access токен. Отказ сервера (401/403) означает невалидный токен, не ошибку.
func (c *Client) VerifyToken(ctx context.Context, token string) (bool, error) {
	var resp struct {
		IsValid bool `json:"isValid"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "api/token/verify/",
		body:   map[string]string{"token": token},
	}, &resp)
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify token: %w", err)
	}
	return resp.IsValid, nil
}

// RefreshToken получает новый access токен по refresh токену
func (c *Client) RefreshToken(ctx context.Context, refresh string) (string, error) {
	var resp struct {
		Access string `json:"access"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "api/token/refresh/",
		body:   map[string]string{"refresh": refresh},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if resp.Access == "" {
		return "", fmt.Errorf("refresh token: empty access token")
	}
	return resp.Access, nil
}
