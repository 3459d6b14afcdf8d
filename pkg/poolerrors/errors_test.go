package poolerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CapturesStack(t *testing.T) {
	err := New(KindTimeout, "deadline exceeded")
	require.NotEmpty(t, err.Stack)
	assert.Equal(t, KindTimeout, err.Kind)
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := Wrap(cause, KindFactory, "factory create failed")
	require.Error(t, err)
	assert.Same(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, KindFactory, "x"))
}

func TestIsKind(t *testing.T) {
	err := NewDrainingError("draining")
	assert.True(t, IsKind(err, KindDraining))
	assert.False(t, IsKind(err, KindTimeout))
	assert.False(t, IsKind(errors.New("plain"), KindDraining))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewFactoryError(errors.New("x"))))
	assert.True(t, IsRetryable(NewTimeoutError("x")))
	assert.False(t, IsRetryable(NewConfigError("x")))
	assert.False(t, IsRetryable(NewProgrammerError("x")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := NewConfigError("bad min").WithDetail("min", -1)
	assert.Equal(t, -1, err.Details["min"])
}

func TestError_String(t *testing.T) {
	err := NewConfigError("max must be > 0")
	assert.Equal(t, "config: max must be > 0", err.Error())

	wrapped := Wrap(errors.New("boom"), KindFactory, "create failed")
	assert.Equal(t, "factory: create failed: boom", wrapped.Error())
}
