package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// Messages история переписки с recipient
func (c *Client) Messages(ctx context.Context, token, recipient string) ([]model.Message, error) {
	var messages []model.Message
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "api/tutoring/messages/",
		token:  token,
		query:  url.Values{"recipient": {recipient}},
	}, &messages)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// Contacts пользователи, с которыми уже есть переписка
func (c *Client) Contacts(ctx context.Context, token string) ([]model.Contact, error) {
	var contacts []model.Contact
	err := c.do(ctx, request{method: http.MethodGet, path: "api/tutoring/users-with-messages/", token: token}, &contacts)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}
