// Package reactor provides a single-process, epoll/kqueue-backed
// readiness multiplexer for file descriptors that only signal "the event
// mask may have changed" rather than carrying any payload of their own.
//
// This is the host-scheduler half of the readiness adapter: libzmq hands
// out a notification fd (ZMQ_FD) per socket that becomes readable whenever
// the socket's internal ZMQ_EVENTS bitmask changes. The fd itself carries
// no information about which direction became ready, or whether the
// notification is even still relevant by the time it's observed - the
// caller must always re-check the authoritative state after being woken.
// Reactor exists purely to turn "many fds, each edge-triggered against an
// opaque internal mask" into "one goroutine, one syscall, many callbacks",
// the same role poller_linux.go/poller_darwin.go play for the event loop
// this package is adapted from.
package reactor

import (
	"errors"
	"sync"
)

// IOEvents is a bitmask of readiness conditions.
type IOEvents uint32

const (
	// EventRead indicates the file descriptor is ready for reading, or
	// (for a ZMQ_FD) that the socket's event mask may have changed.
	EventRead IOEvents = 1 << iota
	// EventWrite indicates the file descriptor is ready for writing.
	EventWrite
)

// Standard errors returned by Reactor and Registration methods.
var (
	ErrClosed            = errors.New("reactor: closed")
	ErrFDAlreadyRegistered = errors.New("reactor: fd already registered")
	ErrFDNotRegistered     = errors.New("reactor: fd not registered")
)

// Callback is invoked from the reactor's poll goroutine whenever the
// registered fd reports one of the watched events. It must not block, and
// must not call Unregister on its own registration synchronously (that is
// safe to do from a separate goroutine, or after returning).
type Callback func(IOEvents)

// platformPoller is implemented by poller_linux.go (epoll) and
// poller_darwin.go (kqueue).
type platformPoller interface {
	init() error
	close() error
	registerFD(fd int, events IOEvents, cb Callback) error
	unregisterFD(fd int) error
	modifyFD(fd int, events IOEvents) error
	// wait blocks up to timeoutMs (or indefinitely, if negative) for
	// events, dispatching callbacks before returning the count handled.
	wait(timeoutMs int) (int, error)
}

// Reactor owns one OS-level poll instance (epoll on Linux, kqueue on
// Darwin/BSD) and runs a single background goroutine that waits for
// readiness and dispatches registered callbacks.
//
// A Reactor is safe for concurrent use: Register/Unregister/Modify may be
// called from any goroutine while the poll loop is running.
type Reactor struct {
	poller platformPoller

	mu      sync.Mutex
	closed  bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	onPollError func(error)
}

// Option configures a Reactor at construction.
type Option func(*Reactor)

// WithPollErrorHandler sets a callback invoked when the underlying poll
// syscall fails with anything other than EINTR. The default handler
// discards the error; persistent poll failures otherwise surface only as
// a failure of every subsequent wait.
func WithPollErrorHandler(h func(error)) Option {
	return func(r *Reactor) {
		r.onPollError = h
	}
}

// New creates and starts a Reactor. Close must be called to release the
// underlying OS poll instance and stop the background goroutine.
func New(opts ...Option) (*Reactor, error) {
	r := &Reactor{
		poller: newPlatformPoller(),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onPollError == nil {
		r.onPollError = func(error) {}
	}
	if err := r.poller.init(); err != nil {
		return nil, err
	}
	go r.run()
	return r, nil
}

func (r *Reactor) run() {
	defer close(r.doneCh)
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}
		// A bounded wait keeps Close responsive without requiring a
		// dedicated wakeup fd for shutdown: the teacher's event loop
		// uses the same bounded-poll-then-recheck-stop shape for its
		// non-IO poll paths.
		if _, err := r.poller.wait(250); err != nil {
			r.onPollError(err)
		}
	}
}

// Register starts watching fd for the given events, invoking cb from the
// reactor's poll goroutine on each readiness report. The returned
// Registration must be released with Unregister once fd is no longer of
// interest (and always before fd is closed, to avoid stale notifications
// after fd number reuse).
func (r *Reactor) Register(fd int, events IOEvents, cb Callback) (*Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if err := r.poller.registerFD(fd, events, cb); err != nil {
		return nil, err
	}
	return &Registration{r: r, fd: fd}, nil
}

// Close stops the poll goroutine and releases the underlying OS poll
// instance. Registrations are not individually notified; callers are
// expected to have released their sockets already.
func (r *Reactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
	return r.poller.close()
}

// Registration is a handle to a single fd's watch on a Reactor.
type Registration struct {
	r  *Reactor
	fd int
}

// Modify changes the watched events for this registration's fd.
func (reg *Registration) Modify(events IOEvents) error {
	return reg.r.poller.modifyFD(reg.fd, events)
}

// Unregister stops watching this registration's fd. It is safe to call
// more than once; subsequent calls return ErrFDNotRegistered.
func (reg *Registration) Unregister() error {
	return reg.r.poller.unregisterFD(reg.fd)
}
