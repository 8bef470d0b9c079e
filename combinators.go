package zmqadapter

import (
	"context"
	"time"
)

// multipartSource is the minimal pull interface the stream combinators
// need - satisfied by *Stream and by another combinator, so combinators
// nest freely.
type multipartSource interface {
	Next(ctx context.Context) (Multipart, error)
}

// ControlHandler decides, from a controller-stream multipart, whether the
// data stream it controls should stop.
type ControlHandler interface {
	ShouldStop(control Multipart) bool
}

// ControlHandlerFunc adapts a plain function to ControlHandler.
type ControlHandlerFunc func(control Multipart) bool

// ShouldStop implements ControlHandler.
func (f ControlHandlerFunc) ShouldStop(control Multipart) bool { return f(control) }

// controlledStream implements §4.8's "controller-driven stop": a control
// stream is polled opportunistically alongside a data stream, and either
// a true verdict from the handler or the control stream ending terminates
// the data stream.
//
// The original's cooperative poll_next checked the control stream first,
// non-blockingly, on every call. A blocking Next has no non-blocking
// "check and move on" primitive to call it with, so the opportunistic
// check is done here with a zero-wait select against a background
// goroutine draining the control stream, rather than by adding a
// TryNext method to Stream that nothing else would ever use.
type controlledStream struct {
	data    multipartSource
	control multipartSource
	handler ControlHandler

	stopCh  chan struct{}
	stopped bool
	errCh   chan error
	err     error
}

// StopOnControl wraps data with a controller: control is polled in the
// background, and once it yields a multipart the handler deems a stop
// signal, or ends, data is terminated. The stop is checked before each
// call into data; a Next already blocked inside data keeps waiting there.
// After a stop verdict every Next returns ErrStreamStopped; after control
// ends or fails, every Next returns the error control's Next returned
// (io.EOF for a graceful end).
func StopOnControl(data, control multipartSource, handler ControlHandler) multipartSource {
	cs := &controlledStream{
		data:    data,
		control: control,
		handler: handler,
		stopCh:  make(chan struct{}),
		errCh:   make(chan error, 1),
	}
	go cs.watchControl()
	return cs
}

func (cs *controlledStream) watchControl() {
	ctx := context.Background()
	for {
		mp, err := cs.control.Next(ctx)
		if err != nil {
			cs.errCh <- err
			close(cs.stopCh)
			return
		}
		if cs.handler.ShouldStop(mp) {
			close(cs.stopCh)
			return
		}
	}
}

// ErrStreamStopped is returned by a combinator's Next once it has
// terminated its wrapped data stream via a control or sentinel signal.
// It is a graceful end, not a failure - callers should treat it the way
// they would io.EOF.
var ErrStreamStopped = &streamStoppedError{}

type streamStoppedError struct{}

func (*streamStoppedError) Error() string { return "zmqadapter: stream stopped by combinator" }

func (cs *controlledStream) Next(ctx context.Context) (Multipart, error) {
	if cs.stopped {
		if cs.err != nil {
			return Multipart{}, cs.err
		}
		return Multipart{}, ErrStreamStopped
	}

	select {
	case <-cs.stopCh:
		cs.stopped = true
		select {
		case cs.err = <-cs.errCh:
		default:
		}
		if cs.err != nil {
			return Multipart{}, cs.err
		}
		return Multipart{}, ErrStreamStopped
	default:
	}

	mp, err := cs.data.Next(ctx)
	if err != nil {
		return Multipart{}, err
	}
	return mp, nil
}

// sentinelStream implements §4.8's "sentinel-driven stop": the data
// stream itself carries the stop signal, as an ordinary multipart the
// handler recognizes. That multipart is consumed, not re-delivered.
type sentinelStream struct {
	data    multipartSource
	handler ControlHandler
	stopped bool
}

// StopOnSentinel wraps data so that the first multipart for which handler
// returns true ends the stream (consuming that multipart) instead of
// being yielded.
func StopOnSentinel(data multipartSource, handler ControlHandler) multipartSource {
	return &sentinelStream{data: data, handler: handler}
}

func (s *sentinelStream) Next(ctx context.Context) (Multipart, error) {
	if s.stopped {
		return Multipart{}, ErrStreamStopped
	}

	mp, err := s.data.Next(ctx)
	if err != nil {
		return Multipart{}, err
	}
	if s.handler.ShouldStop(mp) {
		s.stopped = true
		return Multipart{}, ErrStreamStopped
	}
	return mp, nil
}

// Timeout is the sentinel value yielded by a WithTimeout-wrapped stream
// when its timer fires before the inner stream yields.
var Timeout = NewMultipart()

// timeoutStream implements §4.8's timeout combinator: each Next races the
// inner stream against a timer armed for d, measured from the last timer
// arming (not the last yielded item, per spec) - the timer is an
// independent, continuously re-armed clock, not reset by activity.
type timeoutStream struct {
	data multipartSource
	d    time.Duration

	resultCh chan streamResult
	started  bool
}

type streamResult struct {
	mp  Multipart
	err error
}

// WithTimeout wraps data so that Next yields Timeout if d elapses before
// the inner stream produces a multipart, without ending the stream.
func WithTimeout(data multipartSource, d time.Duration) multipartSource {
	return &timeoutStream{data: data, d: d, resultCh: make(chan streamResult, 1)}
}

func (t *timeoutStream) Next(ctx context.Context) (Multipart, error) {
	if !t.started {
		t.started = true
		go func() {
			mp, err := t.data.Next(context.Background())
			t.resultCh <- streamResult{mp: mp, err: err}
		}()
	}

	timer := time.NewTimer(t.d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Multipart{}, ctx.Err()
	case <-timer.C:
		return Timeout, nil
	case res := <-t.resultCh:
		t.started = false
		if res.err != nil {
			return Multipart{}, res.err
		}
		return res.mp, nil
	}
}
