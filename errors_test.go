package zmqadapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMqErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := wrapMqError("send", inner)
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "send")
}

func TestWrapMqErrorNilPassthrough(t *testing.T) {
	require.NoError(t, wrapMqError("op", nil))
}

func TestIOErrorUnwraps(t *testing.T) {
	inner := errors.New("registration failed")
	err := &IOError{Op: "register", Err: inner}
	require.ErrorIs(t, err, inner)
}
