package util

import "context"

// CtxSend sends a value to a channel while the context isn't done.
// It returns false if the context is done before the value was sent or the channel is nil or closed.
func CtxSend[T any](ctx context.Context, ch chan<- T, val T) (ok bool) {
	if ctx == nil || ch == nil || ctx.Err() != nil {
		return false
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case <-ctx.Done():
		return false
	case ch <- val:
		return true
	}
}

// CtxRecv receives a value from a channel while the context isn't done.
func CtxRecv[T any](ctx context.Context, ch <-chan T) (val T, ok bool) {
	select {
	case <-ctx.Done():
		return val, false
	case val, ok = <-ch:
		return val, ok
	}
}
