package zmqadapter

import "context"

// Receive blocks until one complete MQ multipart message has arrived, or
// ctx is cancelled. This is the Go translation of §4.3's RecvFuture: the
// goroutine calling Receive plays the role the poll-driven future played
// in the original, and ctx cancellation is this translation's equivalent
// of dropping the future mid-receive.
//
// Per §4.3, a receive that has consumed one or more frames before ctx is
// cancelled returns the error with whatever frames were collected so far
// discarded - a partially received multipart is never handed back, since
// there is no way to resume a mid-message receive on the same socket
// later without risking frame interleaving.
func (a *Adapter) Receive(ctx context.Context) (Multipart, error) {
	var mp Multipart

	for {
		if err := a.waitReadable(ctx); err != nil {
			return Multipart{}, err
		}

		result, f, more, err := a.tryReceiveFrame()
		if err != nil {
			return Multipart{}, err
		}
		if result == recvWouldBlock {
			continue
		}

		mp.PushBack(f)
		logEvent("adapter", LevelDebug, "frame received", nil, map[string]any{"more": more})
		if !more {
			return mp, nil
		}
	}
}
