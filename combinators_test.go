package zmqadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory multipartSource for combinator tests,
// avoiding the overhead of a full Adapter/reactor round trip for logic
// that doesn't touch a socket.
type fakeSource struct {
	items []Multipart
	err   error
	i     int
}

func (f *fakeSource) Next(ctx context.Context) (Multipart, error) {
	if f.i >= len(f.items) {
		if f.err != nil {
			return Multipart{}, f.err
		}
		<-ctx.Done()
		return Multipart{}, ctx.Err()
	}
	mp := f.items[f.i]
	f.i++
	return mp, nil
}

func TestStopOnControlStopsWhenHandlerSaysSo(t *testing.T) {
	data := &fakeSource{items: []Multipart{
		NewMultipartFromBytes([]byte("a")),
		NewMultipartFromBytes([]byte("b")),
		NewMultipartFromBytes([]byte("c")),
	}}
	control := &fakeSource{items: []Multipart{NewMultipartFromBytes([]byte("stop"))}}

	stopped := make(chan struct{})
	handler := ControlHandlerFunc(func(mp Multipart) bool {
		close(stopped)
		return true
	})

	stream := StopOnControl(data, control, handler)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("control handler was never invoked")
	}

	// Allow the background watcher goroutine to observe the stop and
	// close stopCh before Next is called.
	time.Sleep(20 * time.Millisecond)

	_, err := stream.Next(context.Background())
	require.True(t, errors.Is(err, ErrStreamStopped))
}

func TestStopOnSentinelConsumesStopSignal(t *testing.T) {
	sentinel := NewMultipartFromBytes([]byte("STOP"))
	data := &fakeSource{items: []Multipart{
		NewMultipartFromBytes([]byte("a")),
		sentinel,
		NewMultipartFromBytes([]byte("unreachable")),
	}}

	handler := ControlHandlerFunc(func(mp Multipart) bool {
		f, _ := mp.Get(0)
		return string(f) == "STOP"
	})

	stream := StopOnSentinel(data, handler)

	mp, err := stream.Next(context.Background())
	require.NoError(t, err)
	f, _ := mp.Get(0)
	require.Equal(t, "a", string(f))

	_, err = stream.Next(context.Background())
	require.True(t, errors.Is(err, ErrStreamStopped))

	// Terminal: further calls keep returning the stopped error, never the
	// "unreachable" item.
	_, err = stream.Next(context.Background())
	require.True(t, errors.Is(err, ErrStreamStopped))
}

func TestWithTimeoutYieldsSentinelThenData(t *testing.T) {
	item := NewMultipartFromBytes([]byte("late"))
	slow := &blockingThenSource{releaseAfter: 120 * time.Millisecond, item: item}

	stream := WithTimeout(slow, 20*time.Millisecond)

	var sawTimeout bool
	var got Multipart
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("data never arrived")
		default:
		}

		mp, err := stream.Next(context.Background())
		require.NoError(t, err)
		if mp.IsEmpty() {
			sawTimeout = true
			continue
		}
		got = mp
		break
	}

	require.True(t, sawTimeout, "expected at least one Timeout sentinel before the data arrived")
	f, _ := got.Get(0)
	require.Equal(t, "late", string(f))
}

type blockingThenSource struct {
	releaseAfter time.Duration
	item         Multipart
	delivered    bool
}

func (b *blockingThenSource) Next(ctx context.Context) (Multipart, error) {
	if b.delivered {
		<-ctx.Done()
		return Multipart{}, ctx.Err()
	}
	select {
	case <-time.After(b.releaseAfter):
		b.delivered = true
		return b.item, nil
	case <-ctx.Done():
		return Multipart{}, ctx.Err()
	}
}
