package zmqadapter

import (
	"context"
	"sync"

	"github.com/asonix/zmqadapter/internal/sendqueue"
)

// SinkStream is a combined sink and stream over the same Adapter - §4.7's
// typestate machine. The original's Ready/SinkOnly/StreamOnly/Both/Polling
// states exist to hand one adapter value back and forth between whichever
// sub-future is active, because only one goroutine-equivalent (the single
// cooperative task) ever touched it at a time.
//
// This translation keeps that same invariant (at most one direction holds
// the adapter at a wall-clock instant) but enforces it with Adapter's own
// ioMu rather than a typestate value threaded through poll calls: Go gives
// both directions their own goroutine to block in concurrently, so Both
// is not a transient bookkeeping state here, it is the steady state, and
// the adapter is the thing serialized rather than the typestate.
type SinkStream struct {
	adapter *Adapter
	queue   *sendqueue.Queue

	recvMu sync.Mutex

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

// NewSinkStream creates a SinkStream over a.
func NewSinkStream(a *Adapter) *SinkStream {
	return &SinkStream{adapter: a, queue: sendqueue.New()}
}

// Send transmits mp. See Sink.Send; semantics are identical, the two
// directions simply share the underlying adapter instead of each owning
// one.
func (ss *SinkStream) Send(ctx context.Context, mp Multipart) error {
	if mp.IsEmpty() {
		return ErrEmptyMultipart
	}

	ss.mu.Lock()
	closed := ss.closed
	ss.mu.Unlock()
	if closed {
		return ErrSink
	}

	return ss.queue.Run(ctx, func(ctx context.Context) error {
		return ss.adapter.Send(ctx, mp)
	})
}

// Next receives one multipart. See Stream.Next; a concurrent Next call
// from a second goroutine fails with ErrStream rather than blocking,
// mirroring the "Polling" state's unreachability from well-behaved
// callers.
func (ss *SinkStream) Next(ctx context.Context) (Multipart, error) {
	if !ss.recvMu.TryLock() {
		return Multipart{}, ErrStream
	}
	defer ss.recvMu.Unlock()

	ss.mu.Lock()
	closed := ss.closed
	ss.mu.Unlock()
	if closed {
		return Multipart{}, ErrClosed
	}

	return ss.adapter.Receive(ctx)
}

// Close flushes any in-flight send and closes the shared adapter. Safe to
// call more than once; a Next or Send racing a concurrent Close may
// observe either the result of its own operation or ErrClosed/ErrSink,
// never a panic or a use of the closed adapter.
func (ss *SinkStream) Close(ctx context.Context) error {
	var err error
	ss.closeOnce.Do(func() {
		ss.mu.Lock()
		ss.closed = true
		ss.mu.Unlock()

		if qerr := ss.queue.Close(ctx); qerr != nil {
			err = qerr
		}
		if cerr := ss.adapter.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return err
}
