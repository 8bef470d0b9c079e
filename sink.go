package zmqadapter

import (
	"context"
	"sync"

	"github.com/asonix/zmqadapter/internal/sendqueue"
)

// Sink is a consumer of multiparts with a one-slot in-flight buffer,
// §4.6's "currently-sending send-future". The Ready/Sending transitions
// that slot describes are implemented here by serializing calls to
// Adapter.Send through an internal/sendqueue.Queue: only one Send is ever
// actually writing to the socket at a time, and a second caller's Send
// simply waits its turn rather than racing the first.
type Sink struct {
	adapter *Adapter
	queue   *sendqueue.Queue

	mu     sync.Mutex
	closed bool
}

// NewSink creates a Sink sending multiparts through a.
func NewSink(a *Adapter) *Sink {
	return &Sink{adapter: a, queue: sendqueue.New()}
}

// Send transmits mp, blocking until it has been fully accepted by the
// underlying socket, ctx is cancelled, or the sink has been closed.
// Concurrent Send calls are serialized in submission order; this is the
// collapse of §4.6's start_send+poll_ready+poll_flush trio into one
// blocking call, since Go gives a caller a goroutine to block in rather
// than a poll-loop to drive from outside.
func (s *Sink) Send(ctx context.Context, mp Multipart) error {
	if mp.IsEmpty() {
		return ErrEmptyMultipart
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSink
	}

	return s.queue.Run(ctx, func(ctx context.Context) error {
		return s.adapter.Send(ctx, mp)
	})
}

// Close flushes any in-flight send and releases the underlying adapter.
// Safe to call more than once.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.queue.Close(ctx); err != nil {
		_ = s.adapter.Close()
		return err
	}
	return s.adapter.Close()
}
