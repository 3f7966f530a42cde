package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Status(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{InvalidArgument("x"), http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusBadRequest},
		{Conflict("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Upstream("x", nil, nil), http.StatusInternalServerError},
		{Internal("x", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), tt.err.Message)
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	cause := errors.New("db down")
	wrapped := fmt.Errorf("load user: %w", Internal("Email could not be sent", cause))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Email could not be sent", appErr.Message)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, IsKind(wrapped, KindInternal))
	assert.False(t, IsKind(cause, KindInternal))
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidEmail("alice@example.com"))
	assert.False(t, IsValidEmail("alice@example"))
	assert.False(t, IsValidEmail("alice example.com"))

	assert.True(t, IsValidPassword("123456"))
	assert.False(t, IsValidPassword("12345"))

	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))

	assert.True(t, IsBlank("a", " "))
	assert.False(t, IsBlank("a", "b"))
}

func TestSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(20)
	require.NoError(t, err)
	b, err := GenerateSecureToken(20)
	require.NoError(t, err)

	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, a, HashToken(a))
}
