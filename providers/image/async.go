package image

import (
	"context"
	"log/slog"
)

// Outcome is the finalized result of an asynchronous invocation. Exactly one
// of Result or Err is meaningful.
type Outcome struct {
	Result *Result
	Err    error
}

// Handle is a pending invocation. The outcome is delivered exactly once on
// Done.
type Handle struct {
	done chan Outcome
}

// Done returns a channel that receives the outcome once the invocation
// completes.
func (h *Handle) Done() <-chan Outcome { return h.done }

// Wait blocks until the outcome arrives or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) (*Result, error) {
	select {
	case o := <-h.done:
		return o.Result, o.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GenerateAsync runs p.Generate on its own goroutine and returns a Handle
// immediately. If callback is non-nil it is invoked exactly once with the
// outcome before the handle resolves; panics raised by the callback are
// recovered and logged, never propagated.
func GenerateAsync(ctx context.Context, p Provider, prompt string, opts Options, callback func(Outcome)) *Handle {
	return dispatch(func() Outcome {
		res, err := p.Generate(ctx, prompt, opts)
		return Outcome{Result: res, Err: err}
	}, callback)
}

// RemoveBackgroundAsync runs p.RemoveBackground on its own goroutine and
// returns a Handle immediately. Callback semantics match GenerateAsync.
func RemoveBackgroundAsync(ctx context.Context, p Provider, img []byte, opts Options, callback func(Outcome)) *Handle {
	return dispatch(func() Outcome {
		res, err := p.RemoveBackground(ctx, img, opts)
		return Outcome{Result: res, Err: err}
	}, callback)
}

func dispatch(run func() Outcome, callback func(Outcome)) *Handle {
	h := &Handle{done: make(chan Outcome, 1)}

	go func() {
		outcome := run()

		if callback != nil {
			func() {
				defer func() {
					if r := recover(); r != nil {
						slog.Error("image completion callback panicked", "panic", r)
					}
				}()
				callback(outcome)
			}()
		}

		h.done <- outcome
	}()

	return h
}
