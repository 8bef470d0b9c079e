package zmqadapter

import (
	"context"
	"sync"

	zmq "github.com/pebbe/zmq4"

	"github.com/asonix/zmqadapter/internal/reactor"
)

// mqSocket is the subset of *zmq.Socket's behaviour the readiness adapter
// depends on, stated abstractly per §6. A narrow interface (rather than a
// concrete *zmq.Socket field) is what makes Adapter unit-testable without
// a real libzmq context.
type mqSocket interface {
	GetFd() (int, error)
	GetEvents() (zmq.State, error)
	SendBytes(data []byte, flags zmq.Flag) (int, error)
	RecvBytes(flags zmq.Flag) ([]byte, error)
	GetRcvmore() (bool, error)
	Close() error
}

// Adapter is the exclusive owner of one MQ socket plus its registration
// with the process-wide Reactor. It is the sole point of contact between
// this module's async primitives and the underlying MQ library, and the
// only place the readiness-reconciliation algorithm (§4.2) lives.
//
// An Adapter must not be used concurrently for the same direction (two
// concurrent Send calls, or two concurrent Receive calls) - SinkStream is
// what provides that serialization for the public API. Concurrent Send
// and Receive (opposite directions) from separate goroutines are safe:
// actual socket syscalls are serialized internally by ioMu, exactly
// because libzmq sockets are not themselves thread-safe, a guarantee
// spec.md's single-threaded cooperative model got for free and this
// goroutine-based translation must provide explicitly (see SPEC_FULL.md's
// Reactor/Adapter module notes).
type Adapter struct {
	sock mqSocket
	reg  *reactor.Registration

	// wake is signalled (non-blocking, depth 1) every time the reactor
	// observes the notification fd become readable - i.e. every time
	// libzmq's event mask may have changed. It carries no information
	// about which direction changed; waitReadable/waitWritable always
	// re-check GetEvents after waking.
	wake chan struct{}

	// ioMu serializes the actual send/receive syscalls against this
	// socket, independent of which logical direction is in play.
	ioMu sync.Mutex

	closeOnce sync.Once
	closed    bool
	closeMu   sync.Mutex

	log Logger
}

// NewAdapter wraps sock with a Reactor registration on its notification
// fd. Socket construction (binding, connecting, setting options) is out
// of scope for this module - see NewSocket - NewAdapter is called
// once that work is already done.
func NewAdapter(r *reactor.Reactor, sock mqSocket) (*Adapter, error) {
	fd, err := sock.GetFd()
	if err != nil {
		return nil, wrapMqError("get_fd", err)
	}

	a := &Adapter{
		sock: sock,
		wake: make(chan struct{}, 1),
		log:  getLogger(),
	}

	reg, err := r.Register(fd, reactor.EventRead, a.onWake)
	if err != nil {
		return nil, &IOError{Op: "register", Err: err}
	}
	a.reg = reg

	return a, nil
}

func (a *Adapter) onWake(reactor.IOEvents) {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Close releases the reactor registration and closes the MQ socket. Safe
// to call more than once.
func (a *Adapter) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.closeMu.Lock()
		a.closed = true
		a.closeMu.Unlock()

		if a.reg != nil {
			if uerr := a.reg.Unregister(); uerr != nil {
				err = &IOError{Op: "unregister", Err: uerr}
			}
		}
		if cerr := a.sock.Close(); cerr != nil && err == nil {
			err = wrapMqError("close", cerr)
		}
		logEvent("adapter", LevelDebug, "adapter closed", err, nil)
	})
	return err
}

// direction identifies which half of ZMQ_EVENTS a wait is checking.
type direction int

const (
	dirRead direction = iota
	dirWrite
)

func (d direction) bit() zmq.State {
	if d == dirWrite {
		return zmq.POLLOUT
	}
	return zmq.POLLIN
}

// wait implements the three-branch readiness reconciliation of §4.2,
// translated to Go's blocking idiom: instead of a driver externally
// calling poll_{send,receive}_ready repeatedly, wait blocks the calling
// goroutine until GetEvents confirms the desired direction, using the
// reactor's wake channel purely as a hint to re-check - never as the
// source of truth, and never busy-looping on it.
func (a *Adapter) wait(ctx context.Context, dir direction) error {
	for {
		a.closeMu.Lock()
		closed := a.closed
		a.closeMu.Unlock()
		if closed {
			return ErrClosed
		}

		state, err := a.sock.GetEvents()
		if err != nil {
			return wrapMqError("get_events", err)
		}
		if state&dir.bit() != 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.wake:
			// Mask may have changed; loop around and re-check it.
			// This is the Go-idiomatic collapse of §4.2's three
			// branches: there is no separate "scheduler readiness"
			// state to desync from MQ's mask, because the wake
			// channel is never treated as authoritative - only as
			// a prompt to re-read GetEvents, which is exactly the
			// reconciliation the spec requires.
		}
	}
}

func (a *Adapter) waitReadable(ctx context.Context) error { return a.wait(ctx, dirRead) }
func (a *Adapter) waitWritable(ctx context.Context) error { return a.wait(ctx, dirWrite) }

// sendResult is the outcome of one non-blocking send attempt.
type sendResult int

const (
	sendSent sendResult = iota
	sendWouldBlock
)

// trySendFrame attempts one non-blocking send of f, setting the
// more-follows flag per §4.2's send-flag discipline. On WouldBlock, f is
// returned unchanged (via the frame still belonging to the caller) so the
// caller can retry - this method never mutates or consumes f itself.
func (a *Adapter) trySendFrame(f Frame, moreFollows bool) (sendResult, error) {
	a.ioMu.Lock()
	defer a.ioMu.Unlock()

	_, err := a.sock.SendBytes(f, sendFlags(moreFollows))
	if err == nil {
		return sendSent, nil
	}
	if isWouldBlock(err) {
		return sendWouldBlock, nil
	}
	return 0, wrapMqError("send", err)
}

// recvResult is the outcome of one non-blocking receive attempt.
type recvResult int

const (
	recvReceived recvResult = iota
	recvWouldBlock
)

// tryReceiveFrame attempts one non-blocking receive, returning the frame
// and whether more frames follow in the same MQ-level message (read from
// GetRcvmore per §4.2).
func (a *Adapter) tryReceiveFrame() (recvResult, Frame, bool, error) {
	a.ioMu.Lock()
	defer a.ioMu.Unlock()

	data, err := a.sock.RecvBytes(zmq.DONTWAIT)
	if err != nil {
		if isWouldBlock(err) {
			return recvWouldBlock, nil, false, nil
		}
		return 0, nil, false, wrapMqError("recv", err)
	}

	more, err := a.sock.GetRcvmore()
	if err != nil {
		return 0, nil, false, wrapMqError("get_rcvmore", err)
	}

	return recvReceived, Frame(data), more, nil
}
