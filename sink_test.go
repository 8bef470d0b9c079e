package zmqadapter

import (
	"context"
	"testing"
	"time"

	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/require"
)

func TestSinkSendSucceedsOnceWritable(t *testing.T) {
	a, sock, _ := newTestAdapter(t)
	sink := NewSink(a)
	defer sink.Close(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- sink.Send(context.Background(), NewMultipartFromBytes([]byte("payload")))
	}()

	time.Sleep(20 * time.Millisecond)
	sock.setState(t, zmq.POLLOUT)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("send never completed")
	}

	sock.mu.Lock()
	defer sock.mu.Unlock()
	require.Len(t, sock.outbox, 1)
}

func TestSinkSendAfterCloseFails(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	sink := NewSink(a)
	require.NoError(t, sink.Close(context.Background()))

	err := sink.Send(context.Background(), NewMultipartFromBytes([]byte("x")))
	require.ErrorIs(t, err, ErrSink)
}

func TestSinkSendEmptyMultipartFails(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	sink := NewSink(a)
	defer sink.Close(context.Background())

	err := sink.Send(context.Background(), NewMultipart())
	require.ErrorIs(t, err, ErrEmptyMultipart)
}

func TestSinkCloseIsIdempotent(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	sink := NewSink(a)
	require.NoError(t, sink.Close(context.Background()))
	require.NoError(t, sink.Close(context.Background()))
}
