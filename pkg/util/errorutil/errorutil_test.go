package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("wrapped domain error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("close: %w", NewDenied("You are not authorized to close this ticket"))
		de := ToDomainError(err)
		require.NotNil(t, de)
		assert.Equal(t, CodeDenied, de.Code)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	})

	t.Run("unknown error becomes internal without leaking detail", func(t *testing.T) {
		de := ToDomainError(errors.New("pq: connection reset by peer"))
		require.NotNil(t, de)
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, "internal server error", de.Message)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	})
}

func TestStoreErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStoreError("Failed user registration", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, HasCode(err, CodeStore))
	assert.Equal(t, "Failed user registration", ToDomainError(err).Message)
}

func TestHasCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{name: "conflict", err: NewConflict("exists", nil), code: CodeConflict, want: true},
		{name: "other code", err: NewBadCredentials("nope"), code: CodeNotRegistered, want: false},
		{name: "plain error", err: errors.New("x"), code: CodeInternal, want: false},
		{name: "nil", err: nil, code: CodeDenied, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasCode(tt.err, tt.code))
		})
	}
}
