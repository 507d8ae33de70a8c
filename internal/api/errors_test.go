package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{
			"timeout",
			&TimeoutError{err: errors.New("deadline exceeded")},
			"Request timeout. Please check your connection.",
		},
		{
			"network",
			&NetworkError{err: errors.New("connection refused")},
			"Cannot connect to server. Please check your internet connection.",
		},
		{
			"unauthorized",
			&HTTPError{Status: http.StatusUnauthorized},
			"Session expired. Please login again.",
		},
		{
			"forbidden",
			&HTTPError{Status: http.StatusForbidden},
			"You don't have permission to perform this action.",
		},
		{
			"server error",
			&HTTPError{Status: http.StatusInternalServerError},
			"Server error. Please try again later.",
		},
		{
			"other status with server message",
			&HTTPError{Status: http.StatusConflict, Message: "account already exists"},
			"Error 409: account already exists",
		},
		{
			"other status without message",
			&HTTPError{Status: http.StatusBadRequest},
			"Error 400: Bad Request",
		},
		{"plain error", errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UserMessage(tc.err))
		})
	}
}

func TestClassificationHelpers(t *testing.T) {
	timeout := &TimeoutError{err: errors.New("slow")}
	network := &NetworkError{err: errors.New("down")}
	auth := &HTTPError{Status: http.StatusUnauthorized}

	assert.True(t, IsTimeout(timeout))
	assert.False(t, IsTimeout(network))
	assert.True(t, IsNetwork(network))
	assert.False(t, IsNetwork(auth))
	assert.True(t, IsAuthError(auth))
	assert.False(t, IsAuthError(network))
	assert.Equal(t, 0, StatusOf(network))
}

func TestRetryBackoffGrowsLinearly(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, cfg.Backoff, cfg.backoffFor(1))
	assert.Equal(t, 2*cfg.Backoff, cfg.backoffFor(2))
}
