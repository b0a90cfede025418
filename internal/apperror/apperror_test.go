package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{Validation("x"), http.StatusBadRequest},
		{InvalidReference("x"), http.StatusBadRequest},
		{NotFound("x"), http.StatusNotFound},
		{Storage("x", errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), string(tt.err.Kind))
	}
}

func TestBody(t *testing.T) {
	body := InvalidReference("Beberapa kode tabung tidak terdaftar").
		WithDetail("invalid_codes", []string{"X1"}).
		Body()
	assert.Equal(t, "Beberapa kode tabung tidak terdaftar", body["message"])
	assert.Equal(t, string(KindInvalidReference), body["error"])
	assert.Equal(t, []string{"X1"}, body["invalid_codes"])

	body = Storage("Gagal", errors.New("timeout")).Body()
	assert.Equal(t, "timeout", body["error"])
}

func TestAsAndFrom(t *testing.T) {
	cause := errors.New("db down")
	wrapped := fmt.Errorf("repo: %w", Storage("Gagal", cause))

	appErr := As(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, KindStorage, appErr.Kind)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, Is(wrapped, KindStorage))
	assert.False(t, Is(wrapped, KindNotFound))

	assert.Nil(t, As(cause))
	from := From(cause)
	assert.Equal(t, KindStorage, from.Kind)
	assert.Equal(t, "Internal server error", from.Message)

	nf := NotFound("x")
	assert.Same(t, nf, From(nf))
}
