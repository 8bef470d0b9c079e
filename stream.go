package zmqadapter

import (
	"context"
	"io"
	"sync"
)

// Stream is a lazy, potentially-infinite, non-restartable sequence of
// multiparts pulled from an Adapter. §4.5's Ready/Pending/Polling state
// machine collapses here into a mutex guarding one blocking Next call at
// a time: "Pending" is simply a goroutine parked inside Adapter.Receive,
// and "Polling" (a second concurrent Next) is prevented outright by
// mu rather than detected and rejected after the fact.
type Stream struct {
	adapter *Adapter

	mu       sync.Mutex
	done     bool
	doneErr  error
}

// NewStream creates a Stream pulling multiparts from a. The Stream takes
// logical ownership of a: once closed (by context cancellation, EOF-style
// termination, or an error), a is not usable again through this Stream.
func NewStream(a *Adapter) *Stream {
	return &Stream{adapter: a}
}

// Next blocks until one multipart is available, ctx is cancelled, or the
// stream has permanently failed. Per §8's testable property, a failing
// stream terminates with that error on every subsequent call - it is
// memoized rather than a fresh attempt being made.
//
// Calling Next concurrently from two goroutines is a programmer error;
// the second caller observes ErrStream.
func (s *Stream) Next(ctx context.Context) (Multipart, error) {
	if !s.mu.TryLock() {
		return Multipart{}, ErrStream
	}
	defer s.mu.Unlock()

	if s.done {
		return Multipart{}, s.doneErr
	}

	mp, err := s.adapter.Receive(ctx)
	if err != nil {
		s.done = true
		s.doneErr = err
		logEvent("stream", LevelWarn, "stream terminated", err, nil)
		return Multipart{}, err
	}

	return mp, nil
}

// Close terminates the stream, closing the underlying adapter. Safe to
// call more than once; subsequent Next calls return io.EOF.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The adapter is closed even if the stream already failed; Adapter.Close
	// itself is idempotent.
	s.done = true
	s.doneErr = io.EOF
	return s.adapter.Close()
}
