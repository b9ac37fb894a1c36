package geom

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout is the hard limit for a single engine call.
const DefaultTimeout = 30 * time.Second

// callResult passes an engine result through the completion channel.
type callResult[T any] struct {
	val T
	err error
}

// Call runs fn on its own goroutine and waits for it, the timeout, or ctx,
// whichever comes first. A non-positive timeout means DefaultTimeout.
//
// On timeout the goroutine may still be running; the buffered channel lets
// it finish and its result is dropped.
func Call[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ch := make(chan callResult[T], 1)
	go func() {
		var res callResult[T]
		defer func() {
			if r := recover(); r != nil {
				res.err = fmt.Errorf("panic in geometry engine: %v", r)
			}
			ch <- res
		}()
		res.val, res.err = fn()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.val, res.err
	case <-timer.C:
		return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
