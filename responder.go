package zmqadapter

import (
	"context"
	"errors"
)

// Handler computes a response multipart for one received request. It is
// the Go translation of the original's service::Handler trait, collapsed
// to a plain function type since Go has no async trait method to model
// here - Call simply blocks for as long as it needs to.
type Handler interface {
	Call(ctx context.Context, request Multipart) (Multipart, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, request Multipart) (Multipart, error)

// Call implements Handler.
func (f HandlerFunc) Call(ctx context.Context, request Multipart) (Multipart, error) {
	return f(ctx, request)
}

// RunResponder drives the service::Runner loop: receive a request from
// source, call handler, send the response through sink, repeat until
// source ends or ctx is cancelled. It is the supplemental convenience
// loop original_source/src/service/mod.rs provided over the raw
// stream+sink primitives, for the common case of a request/response
// server that does not need manual control over each receive/send pair.
//
// A Handler error terminates the loop and is returned; it is not sent to
// the peer as a response.
func RunResponder(ctx context.Context, source multipartSource, sink interface {
	Send(ctx context.Context, mp Multipart) error
}, handler Handler) error {
	for {
		request, err := source.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrStreamStopped) {
				return nil
			}
			return err
		}

		response, err := handler.Call(ctx, request)
		if err != nil {
			return err
		}

		if err := sink.Send(ctx, response); err != nil {
			return err
		}
	}
}

// RunControlledResponder is RunResponder wrapped with a controller
// stream, the Go shape of Runner.run_controlled: source stops as soon as
// control signals a stop or ends.
func RunControlledResponder(ctx context.Context, source multipartSource, control multipartSource, controlHandler ControlHandler, sink interface {
	Send(ctx context.Context, mp Multipart) error
}, handler Handler) error {
	controlled := StopOnControl(source, control, controlHandler)
	return RunResponder(ctx, controlled, sink, handler)
}
