package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter admits or rejects a request. One bucket is shared by all clients.
type rateLimiter interface {
	Allow() bool
}

// backoffHinter is implemented by limiters that know how long a rejected
// client should wait before retrying.
type backoffHinter interface {
	RetryAfter() time.Duration
}

type tokenBucket struct {
	limiter *rate.Limiter
}

// newTokenBucket returns nil when either bound is non-positive, which leaves
// the API unthrottled.
func newTokenBucket(perSecond float64, burst int) *tokenBucket {
	if perSecond <= 0 || burst <= 0 {
		return nil
	}
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (b *tokenBucket) Allow() bool {
	return b == nil || b.limiter.Allow()
}

// RetryAfter is the time one token takes to refill.
func (b *tokenBucket) RetryAfter() time.Duration {
	if b == nil {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(b.limiter.Limit()))
}

// retryAfterSeconds renders a Retry-After value, never below one second.
func retryAfterSeconds(limiter rateLimiter) string {
	hinter, ok := limiter.(backoffHinter)
	if !ok {
		return "1"
	}
	seconds := int(math.Ceil(hinter.RetryAfter().Seconds()))
	return strconv.Itoa(max(seconds, 1))
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", retryAfterSeconds(limiter))
			writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
			return
		}
		next.ServeHTTP(w, r)
	})
}
