package goerror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "unavailable", err: NewUnavailable(errors.New("dial tcp")), want: http.StatusServiceUnavailable},
		{name: "timeout", err: NewTimeout(context.DeadlineExceeded), want: http.StatusGatewayTimeout},
		{name: "too many request", err: NewBusiness("slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "not found", err: NewBusiness("missing", CodeNotFound), want: http.StatusNotFound},
		{name: "unauthorized", err: NewBusiness("nope", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "invalid input", err: NewInvalidInput(nil, "code", "is required"), want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			assert.True(t, errors.As(tt.err, &gerr))
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestError_Messages(t *testing.T) {
	t.Run("server hides underlying message from Msg", func(t *testing.T) {
		// Arrange
		err := NewServer(errors.New("redis: connection refused"))

		// Act
		var gerr *Error
		ok := errors.As(err, &gerr)

		// Assert
		assert.True(t, ok)
		assert.Equal(t, "Internal server error", gerr.Msg())
		assert.Equal(t, "redis: connection refused", gerr.Error())
	})

	t.Run("invalid input with odd key values becomes invalid format", func(t *testing.T) {
		err := NewInvalidInput(nil, "only-key")

		assert.True(t, Is(err, CodeInvalidFormat))
	})

	t.Run("invalid input keeps fields", func(t *testing.T) {
		err := NewInvalidInput(nil, "contact", "is required", "code", "is required")

		var gerr *Error
		assert.True(t, errors.As(err, &gerr))
		assert.Equal(t, map[string]string{"contact": "is required", "code": "is required"}, gerr.Fields())
	})

	t.Run("invalid format custom message", func(t *testing.T) {
		var gerr *Error
		assert.True(t, errors.As(NewInvalidFormat("Invalid phone number"), &gerr))
		assert.Equal(t, "Invalid phone number", gerr.Msg())
	})
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewBusiness("locked", CodeTooManyRequest))

	assert.True(t, Is(wrapped, CodeTooManyRequest))
	assert.False(t, Is(wrapped, CodeNotFound))
	assert.False(t, Is(errors.New("plain"), CodeInternal))
	assert.True(t, errors.Is(NewUnavailable(ErrNotFound), ErrNotFound))
	assert.True(t, errors.Is(NewTimeout(context.DeadlineExceeded), context.DeadlineExceeded))
	assert.True(t, Is(NewTimeout(context.DeadlineExceeded), CodeTimeout))
}

func TestNewTooManyRequest(t *testing.T) {
	var gerr *Error
	assert.True(t, errors.As(NewTooManyRequest("Too many attempts", 90*time.Second), &gerr))
	assert.Equal(t, http.StatusTooManyRequests, gerr.StatusCode())
	assert.Equal(t, 90*time.Second, gerr.RetryAfter())
	assert.Equal(t, TypeBusiness, gerr.Type())

	assert.True(t, errors.As(NewTooManyRequest("x", -time.Second), &gerr))
	assert.Zero(t, gerr.RetryAfter())
}
