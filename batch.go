package zmqadapter

import (
	"context"
	"io"
	"time"
)

// BatchConfig configures CollectBatch's amortized-read behaviour: how
// many multiparts to accumulate, and how long to wait for stragglers
// before returning a partial batch.
type BatchConfig struct {
	// MaxSize is the absolute maximum number of multiparts to collect. A
	// negative value disables the maximum. Defaults to 16, if 0.
	MaxSize int

	// MinSize is the target minimum number of multiparts to collect
	// before PartialTimeout takes effect and the batch may return early
	// with fewer. A negative value means PartialTimeout starts counting
	// from the call to CollectBatch, and the batch may return empty.
	// Defaults to 4, if 0.
	MinSize int

	// PartialTimeout is the maximum time to wait for a batch smaller
	// than MinSize before returning what has been collected so far.
	// Defaults to 50ms, if 0.
	PartialTimeout time.Duration
}

// CollectBatch reads multiple multiparts off source in one call, a
// supplemental convenience beyond the roster in §4.8: a consumer that
// wants to process several requests together (e.g. to batch a downstream
// database write) without hand-rolling its own accumulation loop around
// Stream.Next.
//
// source is drained by a background goroutine into an unbuffered channel,
// since source.Next always blocks and there is no way to ask a
// multipartSource "do you have one ready, without waiting" directly; the
// channel gives the accumulation loop below that non-blocking check via a
// select/default, once the minimum size (or its partial timeout) has been
// satisfied. The goroutine exits once source ends, errors, or ctx is
// cancelled.
//
// If source ends (or errors) before MinSize is reached, CollectBatch
// returns whatever was collected along with source's error; io.EOF
// specifically indicates a graceful end.
func CollectBatch(ctx context.Context, source multipartSource, cfg *BatchConfig) ([]Multipart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maxSize := 16
	minSize := 4
	partialTimeout := 50 * time.Millisecond
	if cfg != nil {
		if cfg.MaxSize != 0 {
			maxSize = cfg.MaxSize
		}
		if cfg.MinSize != 0 {
			minSize = cfg.MinSize
		}
		if cfg.PartialTimeout != 0 {
			partialTimeout = cfg.PartialTimeout
		}
	}

	drainCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan Multipart)
	errCh := make(chan error, 1)
	go func() {
		defer close(ch)
		for {
			mp, err := source.Next(drainCtx)
			if err != nil {
				errCh <- err
				return
			}
			select {
			case ch <- mp:
			case <-drainCtx.Done():
				return
			}
		}
	}()

	var batch []Multipart

	var partialTimeoutCh <-chan time.Time
	if partialTimeout > 0 && minSize < 0 {
		timer := time.NewTimer(partialTimeout)
		defer timer.Stop()
		partialTimeoutCh = timer.C
	}

	// collect up to minSize, or until the partial timeout fires, or ctx
	// cancels
minSizeLoop:
	for (maxSize < 0 || len(batch) < maxSize) && (len(batch) < minSize || (len(batch) == 0 && partialTimeoutCh != nil)) {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()

		case <-partialTimeoutCh:
			break minSizeLoop

		case mp, ok := <-ch:
			if !ok {
				return batch, collectBatchEndErr(errCh)
			}
			batch = append(batch, mp)

			if len(batch) == 1 && partialTimeout > 0 && partialTimeoutCh == nil {
				timer := time.NewTimer(partialTimeout)
				defer timer.Stop()
				partialTimeoutCh = timer.C
			}
		}
	}

	// collect whatever else is immediately available, up to maxSize
maxSizeLoop:
	for maxSize < 0 || len(batch) < maxSize {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()

		case mp, ok := <-ch:
			if !ok {
				return batch, collectBatchEndErr(errCh)
			}
			batch = append(batch, mp)

		default:
			break maxSizeLoop
		}
	}

	return batch, nil
}

// collectBatchEndErr reports why the drain goroutine's channel closed:
// the real error from source.Next, or io.EOF if it ended gracefully.
func collectBatchEndErr(errCh chan error) error {
	select {
	case err := <-errCh:
		if err != nil && err != io.EOF {
			return err
		}
	default:
	}
	return io.EOF
}
