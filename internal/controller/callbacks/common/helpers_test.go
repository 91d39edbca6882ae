package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDFromCallback(t *testing.T) {
	id, err := ParseIDFromCallback("lesson:123:pending")
	require.NoError(t, err)
	assert.Equal(t, int64(123), id)

	_, err = ParseIDFromCallback("logout")
	assert.Error(t, err)

	_, err = ParseIDFromCallback("pay:abc")
	assert.Error(t, err)
}

func TestCallbackArgs(t *testing.T) {
	assert.Equal(t, []string{"12", "5"}, CallbackArgs("rate:12:5", RateLesson))
	assert.Equal(t, []string{"-1"}, CallbackArgs("week:-1", WeekOffset))
	assert.Nil(t, CallbackArgs(RateLesson, RateLesson))
}

func TestIsMessageNotModifiedError(t *testing.T) {
	assert.False(t, IsMessageNotModifiedError(nil))
	assert.True(t, IsMessageNotModifiedError(errors.New("bad request, Bad Request: message is not modified: specified new message content")))
	assert.False(t, IsMessageNotModifiedError(errors.New("chat not found")))
}
