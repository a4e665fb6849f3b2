package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	t.Run("test_1", func(t *testing.T) {
		err := ErrBelowMinimum.WithDescription("contribution %v below minimum %v", 1, 2)
		assert.True(t, errors.Is(err, ErrBelowMinimum))
		assert.False(t, errors.Is(err, ErrCapExceeded))
		assert.Equal(t, "contribution 1 below minimum 2", err.Error())
	})

	t.Run("test_2", func(t *testing.T) {
		wrapped := fmt.Errorf("deposit: %w", ErrPoolPaused)
		assert.True(t, errors.Is(wrapped, ErrPoolPaused))
		assert.True(t, IsValidationError(wrapped))
		assert.False(t, IsStateError(wrapped))
	})
}

func TestExternalCall(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExternalCall("submit attempt", cause)

	require.True(t, errors.Is(err, ErrExternalCallFailed))
	require.True(t, errors.Is(err, cause))
	assert.True(t, IsExternalCallError(err))
	assert.Equal(t, "submit attempt failed: connection refused", err.Error())
}

func TestKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{ErrPoolPaused, KindValidation},
		{ErrNotOwner, KindValidation},
		{ErrAlreadyAttempted, KindState},
		{ErrNotMature, KindState},
		{ErrNothingToRedeem, KindState},
		{ErrExternalCallFailed, KindExternalCall},
	}
	for _, test := range tests {
		assert.Equal(t, test.kind, kindOf(test.err), test.err.Error())
	}
	assert.Equal(t, Kind(0), kindOf(ErrNilGormDB))
}
