package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{err: NewBusiness("nope", CodeUnauthorized), want: http.StatusUnauthorized},
		{err: NewBusiness("nope", CodeForbidden), want: http.StatusForbidden},
		{err: NewBusiness("nope", CodeNotFound), want: http.StatusNotFound},
		{err: NewBusiness("nope", CodeConflict), want: http.StatusConflict},
		{err: NewBusiness("nope", CodeUnavailable), want: http.StatusServiceUnavailable},
		{err: NewInvalidFormat(), want: http.StatusBadRequest},
		{err: NewInvalidInput(nil, "username", "required"), want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		var e *Error
		require.ErrorAs(t, tt.err, &e)
		assert.Equal(t, tt.want, e.StatusCode(), e.String())
	}
}

func TestNewInvalidInput(t *testing.T) {
	t.Parallel()

	var e *Error
	require.ErrorAs(t, NewInvalidInput(nil, "username", "required", "password", "too short"), &e)
	assert.Equal(t, map[string]string{"username": "required", "password": "too short"}, e.Fields())
	assert.Equal(t, TypeValidation, e.Type())

	require.ErrorAs(t, NewInvalidInput(nil, "odd"), &e)
	assert.Equal(t, CodeInvalidFormat, e.Code())

	cause := errors.New("cause")
	assert.ErrorIs(t, NewInvalidInput(cause), cause)
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("outer: %w", NewBusiness("denied", CodeForbidden))
	assert.Equal(t, CodeForbidden, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, "ERROR_CODE_FORBIDDEN", CodeForbidden.String())
	assert.Equal(t, "ERROR_CODE_INTERNAL", Code(99).String())
}
