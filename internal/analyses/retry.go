package analyses

import (
	"context"
	"time"

	"nextcv/internal/llm"
	"nextcv/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

// withRetry runs attempt up to maxAttempts times while it fails with a
// retryable gateway error, pausing a fixed delay between tries.
func withRetry(ctx context.Context, maxAttempts int, delay time.Duration, attempt func(ctx context.Context) (*Result, error)) (*Result, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var (
		res *Result
		err error
	)
	for i := 1; i <= maxAttempts; i++ {
		res, err = attempt(ctx)
		if err == nil || !llm.Retryable(err) || i == maxAttempts {
			return res, err
		}

		kind, _ := llm.KindOf(err)
		telemetry.Warn("analysis.retry", map[string]any{
			"attempt":    i,
			"error_kind": string(kind),
			"request_id": requestIDFromContext(ctx),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return res, err
}
