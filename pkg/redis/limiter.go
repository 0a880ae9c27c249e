package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrLimitExceeded      = errors.New("request limit exceeded")
	ErrLimiterUnavailable = errors.New("request limiter unavailable")
)

// EmailRequestLimiter throttles outbound-email requests (verification resend,
// password reset) per address with a fixed window shared by all workers.
type EmailRequestLimiter struct {
	redis  redis.UniversalClient
	max    int
	window time.Duration
	prefix string
}

// NewEmailRequestLimiter creates a limiter allowing max requests per window.
// A non-positive max disables limiting.
func NewEmailRequestLimiter(c redis.UniversalClient, max int, window time.Duration) *EmailRequestLimiter {
	return &EmailRequestLimiter{
		redis:  c,
		max:    max,
		window: window,
		prefix: "parcelhub:email-req",
	}
}

// Allow counts one request of kind for email and returns ErrLimitExceeded once
// the window's budget is spent.
func (l *EmailRequestLimiter) Allow(ctx context.Context, kind, email string) error {
	if l == nil || l.max <= 0 {
		return nil
	}
	key := l.key(kind, email)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	if count > int64(l.max) {
		return ErrLimitExceeded
	}
	return nil
}

// addresses are hashed so raw emails never appear in key names
func (l *EmailRequestLimiter) key(kind, email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return l.prefix + ":" + kind + ":" + hex.EncodeToString(sum[:16])
}
