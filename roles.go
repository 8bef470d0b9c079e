package zmqadapter

import (
	"context"

	zmq "github.com/pebbe/zmq4"

	"github.com/asonix/zmqadapter/internal/reactor"
)

// Each role below is a thin marker type over the general-purpose
// primitives (Adapter, Stream, Sink, SinkStream), exposing exactly the
// subset of recv/send/stream/sink/sink_stream that role's MQ pattern
// supports, per §6 and the roster in original_source/src/socket/types.rs.
// Every role with a receive stream (all but Req, Pub and Push)
// additionally gets a ControlledStream convenience, the Go shape of that
// file's *Controlled wrapper types.

// Req is a REQ socket: strictly alternating send-then-receive, exposed
// directly over the adapter rather than as a stream or sink, since REQ
// must not have a receive cancelled independently of its paired send
// (see §4.3's strict-alternation warning).
type Req struct{ adapter *Adapter }

// NewReq builds a Req role bound with r over a REQ socket at zctx.
func NewReq(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*Req, error) {
	a, err := NewSocket(zctx, r, zmq.REQ, opts...)
	if err != nil {
		return nil, err
	}
	return &Req{adapter: a}, nil
}

// Send transmits a request multipart.
func (s *Req) Send(ctx context.Context, mp Multipart) error { return s.adapter.Send(ctx, mp) }

// Receive waits for the paired reply.
func (s *Req) Receive(ctx context.Context) (Multipart, error) { return s.adapter.Receive(ctx) }

// Close releases the underlying socket.
func (s *Req) Close() error { return s.adapter.Close() }

// Rep is a REP socket: receive a request, send exactly one reply.
// Exposed as a SinkStream since requests and replies interleave on one
// adapter the way §4.7 describes.
type Rep struct{ *SinkStream }

// NewRep builds a Rep role.
func NewRep(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*Rep, error) {
	a, err := NewSocket(zctx, r, zmq.REP, opts...)
	if err != nil {
		return nil, err
	}
	return &Rep{SinkStream: NewSinkStream(a)}, nil
}

// ControlledStream wraps rp's receive side with a controller stream: once
// control yields a stop signal or ends, rp stops yielding new requests.
func (rp *Rep) ControlledStream(control multipartSource, handler ControlHandler) multipartSource {
	return StopOnControl(rp, control, handler)
}

// Pub is a PUB socket: publish-only, no received data.
type Pub struct{ *Sink }

// NewPub builds a Pub role.
func NewPub(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*Pub, error) {
	a, err := NewSocket(zctx, r, zmq.PUB, opts...)
	if err != nil {
		return nil, err
	}
	return &Pub{Sink: NewSink(a)}, nil
}

// Sub is a SUB socket: subscribe-only, no outbound data.
type Sub struct {
	*Stream
	adapter *Adapter
}

// NewSub builds a Sub role. Subscriptions are set via WithSubscribe
// options at construction, or later with Subscribe.
func NewSub(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*Sub, error) {
	a, err := NewSocket(zctx, r, zmq.SUB, opts...)
	if err != nil {
		return nil, err
	}
	return &Sub{Stream: NewStream(a), adapter: a}, nil
}

// ControlledStream wraps sub with a controller stream; see Rep.ControlledStream.
func (sb *Sub) ControlledStream(control multipartSource, handler ControlHandler) multipartSource {
	return StopOnControl(sb, control, handler)
}

// subscriber is satisfied by *zmq.Socket; split out so Subscribe and
// Unsubscribe can be expressed without widening mqSocket for every other
// role that never needs them.
type subscriber interface {
	SetSubscribe(filter string) error
	SetUnsubscribe(filter string) error
}

// Subscribe adds a subscription filter at runtime, beyond whatever
// WithSubscribe options were given at construction.
func (sb *Sub) Subscribe(filter []byte) error {
	sub, ok := sb.adapter.sock.(subscriber)
	if !ok {
		return wrapMqError("subscribe", errNotSubscribeCapable)
	}
	return wrapMqError("subscribe", sub.SetSubscribe(string(filter)))
}

// Unsubscribe removes a previously added subscription filter.
func (sb *Sub) Unsubscribe(filter []byte) error {
	sub, ok := sb.adapter.sock.(subscriber)
	if !ok {
		return wrapMqError("unsubscribe", errNotSubscribeCapable)
	}
	return wrapMqError("unsubscribe", sub.SetUnsubscribe(string(filter)))
}

// Push is a PUSH socket: send-only, fans out round-robin to connected
// PULL peers.
type Push struct{ *Sink }

// NewPush builds a Push role.
func NewPush(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*Push, error) {
	a, err := NewSocket(zctx, r, zmq.PUSH, opts...)
	if err != nil {
		return nil, err
	}
	return &Push{Sink: NewSink(a)}, nil
}

// Pull is a PULL socket: receive-only, the other half of a PUSH/PULL
// pipeline stage.
type Pull struct{ *Stream }

// NewPull builds a Pull role.
func NewPull(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*Pull, error) {
	a, err := NewSocket(zctx, r, zmq.PULL, opts...)
	if err != nil {
		return nil, err
	}
	return &Pull{Stream: NewStream(a)}, nil
}

// ControlledStream wraps pl with a controller stream; see Rep.ControlledStream.
func (pl *Pull) ControlledStream(control multipartSource, handler ControlHandler) multipartSource {
	return StopOnControl(pl, control, handler)
}

// Dealer is a DEALER socket: async request/reply, stream+sink over one
// adapter.
type Dealer struct{ *SinkStream }

// NewDealer builds a Dealer role.
func NewDealer(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*Dealer, error) {
	a, err := NewSocket(zctx, r, zmq.DEALER, opts...)
	if err != nil {
		return nil, err
	}
	return &Dealer{SinkStream: NewSinkStream(a)}, nil
}

// ControlledStream wraps d with a controller stream; see Rep.ControlledStream.
func (d *Dealer) ControlledStream(control multipartSource, handler ControlHandler) multipartSource {
	return StopOnControl(d, control, handler)
}

// Router is a ROUTER socket: the addressable counterpart to Dealer/Req.
// Each received multipart starts with the sender's routing-id frame, and
// each sent multipart must start with the routing id of its destination;
// the caller adds and strips that frame itself.
type Router struct{ *SinkStream }

// NewRouter builds a Router role.
func NewRouter(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*Router, error) {
	a, err := NewSocket(zctx, r, zmq.ROUTER, opts...)
	if err != nil {
		return nil, err
	}
	return &Router{SinkStream: NewSinkStream(a)}, nil
}

// ControlledStream wraps rt with a controller stream; see Rep.ControlledStream.
func (rt *Router) ControlledStream(control multipartSource, handler ControlHandler) multipartSource {
	return StopOnControl(rt, control, handler)
}

// Pair is a PAIR socket: exclusive one-to-one connection, stream+sink.
type Pair struct{ *SinkStream }

// NewPair builds a Pair role bound (not connected) or connected to a
// single peer address, per the original's bind-bool PairConfig - here
// expressed with ordinary WithBind/WithConnect options.
func NewPair(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*Pair, error) {
	a, err := NewSocket(zctx, r, zmq.PAIR, opts...)
	if err != nil {
		return nil, err
	}
	return &Pair{SinkStream: NewSinkStream(a)}, nil
}

// ControlledStream wraps p with a controller stream; see Rep.ControlledStream.
func (p *Pair) ControlledStream(control multipartSource, handler ControlHandler) multipartSource {
	return StopOnControl(p, control, handler)
}

// XPub is an XPUB socket: like Pub, but subscription/unsubscription
// messages arrive as received multiparts rather than being handled
// internally by libzmq.
type XPub struct{ *SinkStream }

// NewXPub builds an XPub role.
func NewXPub(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*XPub, error) {
	a, err := NewSocket(zctx, r, zmq.XPUB, opts...)
	if err != nil {
		return nil, err
	}
	return &XPub{SinkStream: NewSinkStream(a)}, nil
}

// ControlledStream wraps xp with a controller stream; see Rep.ControlledStream.
func (xp *XPub) ControlledStream(control multipartSource, handler ControlHandler) multipartSource {
	return StopOnControl(xp, control, handler)
}

// XSub is an XSUB socket: like Sub, but subscribe/unsubscribe are sent as
// ordinary outbound multiparts rather than via SetSubscribe.
type XSub struct{ *SinkStream }

// NewXSub builds an XSub role.
func NewXSub(zctx *zmq.Context, r *reactor.Reactor, opts ...SocketOption) (*XSub, error) {
	a, err := NewSocket(zctx, r, zmq.XSUB, opts...)
	if err != nil {
		return nil, err
	}
	return &XSub{SinkStream: NewSinkStream(a)}, nil
}

// ControlledStream wraps xs with a controller stream; see Rep.ControlledStream.
func (xs *XSub) ControlledStream(control multipartSource, handler ControlHandler) multipartSource {
	return StopOnControl(xs, control, handler)
}
