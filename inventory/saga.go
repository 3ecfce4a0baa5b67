package inventory

import (
	"context"

	"github.com/Yuki-gilty/drone-manager/remote"
	"k8s.io/client-go/util/retry"
)

// saga runs the steps of a multi-request write against a backend that has no
// server-side transaction for it. Every step must be idempotent: it is
// retried on server errors and the first step that still fails stops the
// saga.
type saga struct {
	b  *base
	op string
}

func (s saga) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	attempt := 0
	err := retry.OnError(retry.DefaultRetry, remote.Retriable, func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(ctx)
	})
	if err != nil {
		s.b.logFailure(s.op, err, "step", name, "attempts", attempt)
	}
	return err
}

// compensate undoes a completed step after a later one failed. Its own
// failure is logged and swallowed so the caller sees the original error.
func (s saga) compensate(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if err := s.step(ctx, "compensate "+name, fn); err != nil {
		s.b.logger.Error(s.op+" left partial data", "step", name, "error", err)
	}
}
