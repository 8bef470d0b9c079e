package zmqadapter

import (
	"testing"

	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/require"
)

func TestNewSocketRejectsSubscribeOnNonSubKinds(t *testing.T) {
	_, err := NewSocket(nil, nil, zmq.PUSH, WithSubscribe([]byte("topic")))
	require.Error(t, err)
	require.ErrorIs(t, err, errNotSubscribeCapable)
}

func TestSubscribeCapableKinds(t *testing.T) {
	require.True(t, subscribeCapable(zmq.SUB))
	require.True(t, subscribeCapable(zmq.XSUB))
	require.False(t, subscribeCapable(zmq.PUB))
	require.False(t, subscribeCapable(zmq.REQ))
}

func TestSocketOptionsAccumulate(t *testing.T) {
	var cfg socketConfig
	opts := []SocketOption{
		WithBind("tcp://127.0.0.1:5555"),
		WithConnect("tcp://127.0.0.1:5556"),
		WithIdentity("worker-1"),
		WithHighWaterMark(100),
		WithLinger(0),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	require.Equal(t, []string{"tcp://127.0.0.1:5555"}, cfg.binds)
	require.Equal(t, []string{"tcp://127.0.0.1:5556"}, cfg.connects)
	require.Equal(t, "worker-1", cfg.identity)
	require.True(t, cfg.hasID)
	require.Equal(t, 100, cfg.hwm)
	require.True(t, cfg.hasHWM)
	require.Equal(t, 0, cfg.linger)
	require.True(t, cfg.hasLinger)
}
