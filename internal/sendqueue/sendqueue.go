// Package sendqueue serializes the single in-flight send a Sink or
// SinkStream allows at a time: §4.6's start_send/poll_ready/poll_flush
// trio, collapsed into one blocking call per caller, with callers queued
// and run strictly one at a time in submission order.
package sendqueue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Run once the Queue has been closed and no
// longer accepts new work.
var ErrClosed = errors.New("sendqueue: closed")

type job struct {
	ctx context.Context
	fn  func(context.Context) error
	res chan error
}

// Queue runs submitted functions one at a time, in submission order,
// on a single background goroutine. The zero value is not usable;
// construct with New.
type Queue struct {
	jobCh chan job
	done  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

// New starts a Queue's background worker goroutine. Close releases it.
func New() *Queue {
	q := &Queue{
		jobCh: make(chan job),
		done:  make(chan struct{}),
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.ctx.Done():
			return
		case j := <-q.jobCh:
			j.res <- j.fn(j.ctx)
		}
	}
}

// Run submits fn and blocks until it is fn's turn to execute and fn has
// returned, or ctx is cancelled (either while still queued, or while
// fn is running - fn itself receives ctx and is expected to honour its
// cancellation). A submission made after Close fails with ErrClosed.
func (q *Queue) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := q.ctx.Err(); err != nil {
		return ErrClosed
	}

	res := make(chan error, 1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.ctx.Done():
		return ErrClosed
	case q.jobCh <- job{ctx: ctx, fn: fn, res: res}:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-res:
		return err
	}
}

// Close stops the Queue from accepting further submissions and waits for
// the worker goroutine to exit - immediately, if it is idle, or once the
// job currently running has returned. If ctx is cancelled first, Close
// returns ctx.Err() without waiting further; the worker still exits on
// its own once the running job returns.
func (q *Queue) Close(ctx context.Context) error {
	q.closeOnce.Do(q.cancel)
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
