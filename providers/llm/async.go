package llm

import (
	"context"
	"log/slog"
)

// Outcome is the finalized result of an asynchronous invocation. Exactly one
// of Text or Err is meaningful.
type Outcome struct {
	Text string
	Err  error
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
func (h *Handle) Wait(ctx context.Context) (string, error) {
	select {
	case o := <-h.done:
		return o.Text, o.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ExecuteModelAsync runs exec.ExecuteModel on its own goroutine and returns
// a Handle immediately. If callback is non-nil it is invoked exactly once
// with the outcome before the handle resolves; panics raised by the callback
// are recovered and logged, never propagated, so a misbehaving callback
// cannot corrupt the adapter's control flow.
func ExecuteModelAsync(ctx context.Context, exec ModelExecutor, prompt string, inputs Inputs, opts Options, callback func(Outcome)) *Handle {
	h := &Handle{done: make(chan Outcome, 1)}

	go func() {
		text, err := exec.ExecuteModel(ctx, prompt, inputs, opts)
		outcome := Outcome{Text: text, Err: err}

		if callback != nil {
			func() {
				defer func() {
					if r := recover(); r != nil {
						slog.Error("llm completion callback panicked", "panic", r)
					}
				}()
				callback(outcome)
			}()
		}

		h.done <- outcome
	}()

	return h
}
