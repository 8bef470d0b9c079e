package zmqadapter

import (
	"errors"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/asonix/zmqadapter/internal/reactor"
)

var errNotSubscribeCapable = errors.New("zmqadapter: WithSubscribe is only valid for SUB and XSUB sockets")

func msToDuration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// socketConfig accumulates the construction-time options of NewSocket,
// translating the original_source/src/socket/config.rs builder chain
// (SocketBuilder -> SockConfig -> build(kind)) into Go's functional-options
// idiom: every step of that chain becomes one SocketOption instead of a
// distinct builder type, since Go has no affine/move-typed builder to
// thread through.
type socketConfig struct {
	binds      []string
	connects   []string
	subscribe  [][]byte
	identity   string
	hasID      bool
	hwm        int
	hasHWM     bool
	linger     int
	hasLinger  bool
}

// SocketOption configures a socket at construction time, applied in the
// order passed to NewSocket.
type SocketOption func(*socketConfig)

// WithBind binds the socket to addr. May be given more than once to bind
// to multiple addresses, mirroring SockConfig.bind's repeatable builder
// step.
func WithBind(addr string) SocketOption {
	return func(c *socketConfig) { c.binds = append(c.binds, addr) }
}

// WithConnect connects the socket to addr. May be given more than once.
func WithConnect(addr string) SocketOption {
	return func(c *socketConfig) { c.connects = append(c.connects, addr) }
}

// WithIdentity sets the socket's routing identity, used by Dealer/Router
// sockets to tag and address peers.
func WithIdentity(id string) SocketOption {
	return func(c *socketConfig) {
		c.identity = id
		c.hasID = true
	}
}

// WithSubscribe adds a subscription filter, equivalent to SubConfig's
// filter step. Only meaningful for SUB and XSUB sockets; NewSocket
// returns an error if used with any other kind. May be given more than
// once to subscribe to multiple prefixes; an empty filter subscribes to
// everything.
func WithSubscribe(filter []byte) SocketOption {
	return func(c *socketConfig) { c.subscribe = append(c.subscribe, filter) }
}

// WithHighWaterMark sets ZMQ_SNDHWM and ZMQ_RCVHWM.
func WithHighWaterMark(hwm int) SocketOption {
	return func(c *socketConfig) {
		c.hwm = hwm
		c.hasHWM = true
	}
}

// WithLinger sets ZMQ_LINGER, in milliseconds. A value of 0 discards
// unsent messages immediately on Close; a negative value waits
// indefinitely.
func WithLinger(ms int) SocketOption {
	return func(c *socketConfig) {
		c.linger = ms
		c.hasLinger = true
	}
}

func subscribeCapable(kind zmq.Type) bool {
	return kind == zmq.SUB || kind == zmq.XSUB
}

// NewSocket creates, configures, and binds/connects one MQ socket of the
// given kind, then wraps it in an Adapter registered with r. This
// collapses SocketBuilder/SockConfig/SubConfig/PairConfig's staged
// Rust builder into a single call plus options, since construction
// errors in Go are reported directly rather than deferred to a final
// build() call.
func NewSocket(zctx *zmq.Context, r *reactor.Reactor, kind zmq.Type, opts ...SocketOption) (*Adapter, error) {
	var cfg socketConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(cfg.subscribe) > 0 && !subscribeCapable(kind) {
		return nil, wrapMqError("new_socket", errNotSubscribeCapable)
	}

	sock, err := zctx.NewSocket(kind)
	if err != nil {
		return nil, wrapMqError("socket", err)
	}

	if err := configureSocket(sock, &cfg); err != nil {
		_ = sock.Close()
		return nil, err
	}

	return NewAdapter(r, sock)
}

func configureSocket(sock *zmq.Socket, cfg *socketConfig) error {
	if cfg.hasID {
		if err := sock.SetIdentity(cfg.identity); err != nil {
			return wrapMqError("set_identity", err)
		}
	}
	if cfg.hasHWM {
		if err := sock.SetSndhwm(cfg.hwm); err != nil {
			return wrapMqError("set_sndhwm", err)
		}
		if err := sock.SetRcvhwm(cfg.hwm); err != nil {
			return wrapMqError("set_rcvhwm", err)
		}
	}
	if cfg.hasLinger {
		if err := sock.SetLinger(msToDuration(cfg.linger)); err != nil {
			return wrapMqError("set_linger", err)
		}
	}
	for _, filter := range cfg.subscribe {
		if err := sock.SetSubscribe(string(filter)); err != nil {
			return wrapMqError("set_subscribe", err)
		}
	}
	for _, addr := range cfg.binds {
		if err := sock.Bind(addr); err != nil {
			return wrapMqError("bind", err)
		}
	}
	for _, addr := range cfg.connects {
		if err := sock.Connect(addr); err != nil {
			return wrapMqError("connect", err)
		}
	}
	return nil
}
