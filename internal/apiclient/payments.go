package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

func (c *Client) Payments(ctx context.Context, token string) ([]model.Payment, error) {
	var payments []model.Payment
	err := c.do(ctx, request{method: http.MethodGet, path: "api/tutoring/lesson-payments/", token: token}, &payments)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// CreatePayment отмечает урок оплаченным
func (c *Client) CreatePayment(ctx context.Context, token string, p model.Payment) (*model.Payment, error) {
	var created model.Payment
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "api/tutoring/lesson-payments/",
		token:  token,
		body:   p,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return &created, nil
}
