package frame

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EncodeAll frames every buffer of bufs concurrently. The result holds one
// frame per buffer, in input order.
//
// At most GOMAXPROCS buffers are encoded at once. The first error, or the
// cancellation of ctx, stops the remaining work.
func EncodeAll(ctx context.Context, bufs [][]byte, opts ...Option) ([][]byte, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(bufs))
	err = forEach(ctx, len(bufs), func(i int) error {
		frame, err := cfg.appendEncode(nil, bufs[i])
		if err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
		out[i] = frame

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DecodeAll is the concurrent counterpart of Decode.
func DecodeAll(ctx context.Context, frames [][]byte, opts ...Option) ([][]byte, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(frames))
	err = forEach(ctx, len(frames), func(i int) error {
		buf, _, err := cfg.appendDecode(nil, frames[i])
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		out[i] = buf

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func forEach(ctx context.Context, n int, fn func(i int) error) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for i := range n {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			return fn(i)
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	// Cancellation of the parent may have stopped the loop without any task failing.
	return ctx.Err()
}
