package remote

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/glif-dev/glif/internal/apierr"
)

// waitLimiter wraps a token bucket with a bounded wait: when the bucket is
// empty, callers block cooperatively until a token frees up or the bound
// elapses, instead of failing immediately.
type waitLimiter struct {
	limiter *rate.Limiter
	maxWait time.Duration
}

func newWaitLimiter(requestsPerMinute, burst int, maxWait time.Duration) *waitLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burst <= 0 {
		burst = 10
	}
	if maxWait <= 0 {
		maxWait = 30 * time.Second
	}
	return &waitLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst),
		maxWait: maxWait,
	}
}

// acquire blocks until a token is available, the caller's context is
// canceled, or the wait bound elapses. Exceeding the bound surfaces
// RateLimitExceeded; caller cancellation propagates as-is.
func (w *waitLimiter) acquire(ctx context.Context, op string) error {
	waitCtx, cancel := context.WithTimeout(ctx, w.maxWait)
	defer cancel()

	if err := w.limiter.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apierr.New(apierr.RateLimitExceeded, op,
			"no token within %s wait bound", w.maxWait)
	}
	return nil
}

// burstSize reports the bucket capacity; the asset downloader bounds its
// worker pool with it.
func (w *waitLimiter) burstSize() int {
	return w.limiter.Burst()
}
