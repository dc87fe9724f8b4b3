package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

var errCallPanicked = errors.New("provider call panicked")

type callResult[T any] struct {
	value T
	err   error
}

// Bounded runs call and races it against timeout on clock.
//
// If call returns first its result is passed through unchanged. If the timer
// fires first, Bounded returns ErrTimeout and cancels the context handed to
// call; whatever call returns afterwards is dropped. A panic inside call is
// returned as an error.
func Bounded[T any](ctx context.Context, clock clockwork.Clock, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so a late sender never blocks after we stopped listening.
	slot := make(chan callResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slot <- callResult[T]{err: fmt.Errorf("%w: %v", errCallPanicked, r)}
			}
		}()
		v, err := call(callCtx)
		slot <- callResult[T]{value: v, err: err}
	}()

	timer := clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-slot:
		return res.value, res.err
	case <-timer.Chan():
		var zero T
		return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
