package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	assert.Nil(t, MapError(nil))

	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("bad row: %w", ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("space x: %w", ErrNotFound), http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("transform: %w", ErrBusy), http.StatusConflict},
		{fmt.Errorf("calldata: %w", ErrRemote), http.StatusBadGateway},
		{New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, MapError(tc.err).Code, tc.err.Error())
	}
}

func TestMapErrorKeepsAppError(t *testing.T) {
	appErr := NewAppError(http.StatusTeapot, "short and stout", nil)
	wrapped := fmt.Errorf("outer: %w", appErr)

	got := MapError(wrapped)
	assert.Same(t, appErr, got)
	assert.Equal(t, "short and stout", got.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	appErr := NewAppError(http.StatusBadRequest, "Invalid request", ErrInvalidInput)
	assert.True(t, Is(appErr, ErrInvalidInput))
	assert.Equal(t, "Invalid request: invalid input", appErr.Error())
}
