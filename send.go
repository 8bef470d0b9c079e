package zmqadapter

import "context"

// Send transmits mp as one MQ multipart message, blocking until every
// frame has been accepted by libzmq or ctx is cancelled. This is the Go
// translation of §4.4's SendFuture: instead of a poll-driven future that
// a reader advances from outside, Send is itself the blocking operation -
// cancelling ctx is this translation's equivalent of dropping the future,
// and has the identical effect of abandoning the send after whatever
// prefix of frames has already gone out (§4.4's partial-send note).
//
// An empty mp is rejected with ErrEmptyMultipart before any frame is
// sent.
func (a *Adapter) Send(ctx context.Context, mp Multipart) error {
	if mp.IsEmpty() {
		return ErrEmptyMultipart
	}

	for mp.Len() > 0 {
		f, _ := mp.PopFront()
		moreFollows := mp.Len() > 0

		for {
			if err := a.waitWritable(ctx); err != nil {
				return err
			}

			result, err := a.trySendFrame(f, moreFollows)
			if err != nil {
				return err
			}
			if result == sendSent {
				logEvent("adapter", LevelDebug, "frame sent", nil, map[string]any{"more": moreFollows})
				break
			}
			// WouldBlock: another writer (or a stale readiness signal)
			// raced us. Loop back to waitWritable and retry the same
			// frame - it was never consumed.
		}
	}

	return nil
}
