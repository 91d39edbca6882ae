package common

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/chat"
	"github.com/Freeeeeet/tutoring_bot/internal/session"
)

func TestErrorMessageSeparatesAuthFromPermission(t *testing.T) {
	expired := fmt.Errorf("load lessons: %w", &apiclient.APIError{Status: http.StatusUnauthorized, Message: "Token is invalid or expired"})
	assert.True(t, IsLoginRequired(expired))
	assert.Equal(t, LoginHint, ErrorMessage(expired))

	assert.True(t, IsLoginRequired(session.ErrLoginRequired))

	denied := fmt.Errorf("accept lesson: %w", &apiclient.APIError{Status: http.StatusForbidden, Message: "You do not have permission to perform this action."})
	assert.False(t, IsLoginRequired(denied))
	assert.Equal(t, "❌ You do not have permission to perform this action.", ErrorMessage(denied))
}

func TestErrorMessageFallbacks(t *testing.T) {
	assert.Equal(t, "💬 Чат не открыт. Выберите собеседника: /chat", ErrorMessage(fmt.Errorf("send: %w", chat.ErrNoStream)))
	assert.Equal(t, "❌ Произошла ошибка. Попробуйте позже.", ErrorMessage(&apiclient.APIError{Status: http.StatusInternalServerError}))
}
