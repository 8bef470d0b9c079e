package zmqadapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	sent []Multipart
}

func (r *recordingSink) Send(ctx context.Context, mp Multipart) error {
	r.sent = append(r.sent, mp)
	return nil
}

func TestRunResponderEchoesUntilStreamStopped(t *testing.T) {
	source := &fakeSource{items: []Multipart{
		NewMultipartFromBytes([]byte("req1")),
		NewMultipartFromBytes([]byte("req2")),
	}, err: ErrStreamStopped}

	sink := &recordingSink{}

	handler := HandlerFunc(func(ctx context.Context, request Multipart) (Multipart, error) {
		f, _ := request.Get(0)
		return NewMultipartFromBytes(append([]byte("echo:"), f...)), nil
	})

	err := RunResponder(context.Background(), source, sink, handler)
	require.NoError(t, err)
	require.Len(t, sink.sent, 2)

	f, _ := sink.sent[0].Get(0)
	require.Equal(t, "echo:req1", string(f))
	f, _ = sink.sent[1].Get(0)
	require.Equal(t, "echo:req2", string(f))
}

func TestRunResponderPropagatesHandlerError(t *testing.T) {
	source := &fakeSource{items: []Multipart{NewMultipartFromBytes([]byte("req1"))}}
	sink := &recordingSink{}

	wantErr := errors.New("handler boom")
	handler := HandlerFunc(func(ctx context.Context, request Multipart) (Multipart, error) {
		return Multipart{}, wantErr
	})

	err := RunResponder(context.Background(), source, sink, handler)
	require.ErrorIs(t, err, wantErr)
	require.Empty(t, sink.sent)
}
