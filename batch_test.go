package zmqadapter

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollectBatchRespectsMaxSize(t *testing.T) {
	items := make([]Multipart, 10)
	for i := range items {
		items[i] = NewMultipartFromBytes([]byte{byte('a' + i)})
	}
	source := &fakeSource{items: items}

	batch, err := CollectBatch(context.Background(), source, &BatchConfig{
		MaxSize:        3,
		MinSize:        3,
		PartialTimeout: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, batch, 3)
}

func TestCollectBatchReturnsEOFOnSourceEnd(t *testing.T) {
	source := &fakeSource{
		items: []Multipart{NewMultipartFromBytes([]byte("only"))},
		err:   io.EOF,
	}

	batch, err := CollectBatch(context.Background(), source, &BatchConfig{
		MaxSize:        10,
		MinSize:        10,
		PartialTimeout: 10 * time.Millisecond,
	})
	require.ErrorIs(t, err, io.EOF)
	require.Len(t, batch, 1)
}
