package zmqadapter

import (
	"context"
	"sync"
	"testing"
	"time"

	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/require"
)

func TestStreamNextYieldsMultiparts(t *testing.T) {
	a, sock, _ := newTestAdapter(t)
	s := NewStream(a)
	defer s.Close()

	sock.mu.Lock()
	sock.inbox = [][]Frame{{Frame("one")}, {Frame("two")}}
	sock.mu.Unlock()
	sock.setState(t, zmq.POLLIN)

	mp1, err := s.Next(context.Background())
	require.NoError(t, err)
	f, _ := mp1.Get(0)
	require.Equal(t, "one", string(f))

	mp2, err := s.Next(context.Background())
	require.NoError(t, err)
	f, _ = mp2.Get(0)
	require.Equal(t, "two", string(f))
}

func TestStreamConcurrentNextFails(t *testing.T) {
	a, sock, _ := newTestAdapter(t)
	s := NewStream(a)
	defer s.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Next(context.Background())
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}

	time.Sleep(20 * time.Millisecond)
	sock.mu.Lock()
	sock.inbox = [][]Frame{{Frame("x")}}
	sock.mu.Unlock()
	sock.setState(t, zmq.POLLIN)

	wg.Wait()

	var sawStreamErr bool
	for _, err := range errs {
		if err == ErrStream {
			sawStreamErr = true
		}
	}
	require.True(t, sawStreamErr, "expected one concurrent caller to observe ErrStream")
}

func TestStreamMemoizesTerminalError(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	s := NewStream(a)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err1 := s.Next(ctx)
	require.Error(t, err1)

	_, err2 := s.Next(context.Background())
	require.Equal(t, err1, err2)
}
