package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WithTimeout bounds fn by timeout. fn must honour its context. A zero
// timeout calls fn with ctx unchanged.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := fn(tctx)
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w after %v", name, context.DeadlineExceeded, timeout)
	}
	return err
}
