package zmqadapter

import (
	"errors"
	"syscall"

	zmq "github.com/pebbe/zmq4"
)

// isWouldBlock reports whether err is the EAGAIN libzmq returns from a
// DONTWAIT send/receive that could not complete immediately. This is the
// one error value Adapter never surfaces: every other error is wrapped
// and returned to the caller untouched, per §7.
func isWouldBlock(err error) bool {
	var errno zmq.Errno
	if errors.As(err, &errno) {
		return errno == zmq.Errno(syscall.EAGAIN)
	}
	return errors.Is(err, syscall.EAGAIN)
}

// isTerm reports whether err indicates the owning MQ context has been
// terminated, distinct from an ordinary socket error.
func isTerm(err error) bool {
	var errno zmq.Errno
	if errors.As(err, &errno) {
		return errno == zmq.ETERM
	}
	return false
}
