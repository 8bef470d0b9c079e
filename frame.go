package zmqadapter

import zmq "github.com/pebbe/zmq4"

// Frame is a single opaque message frame: an owned byte buffer produced or
// consumed by the underlying MQ library, plus the "more frames follow in
// this message" bit. Frame itself is just a byte slice - the more-follows
// bit is not a property of the bytes, it is set at send time via the
// send-flag discipline in Adapter.trySendFrame and read back from the
// socket at receive time by Adapter.tryReceiveFrame.
type Frame []byte

// sendFlags returns the libzmq flag combination for sending this frame,
// given whether further frames follow it in the same multipart.
func sendFlags(moreFollows bool) zmq.Flag {
	flags := zmq.DONTWAIT
	if moreFollows {
		flags |= zmq.SNDMORE
	}
	return flags
}
