package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/config"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/redis"
)

// RedisRateLimiter enforces the per-sender message cap with a fixed window
// counter in Redis, shared across API instances.
type RedisRateLimiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
}

// NewRedisRateLimiter wraps a Redis client. A nil client yields a nil
// limiter, which the service treats as rate limiting disabled.
func NewRedisRateLimiter(client *redis.Client, cfg config.RateLimitConfig) *RedisRateLimiter {
	if client == nil {
		return nil
	}
	return &RedisRateLimiter{client: client, cfg: cfg}
}

func (l *RedisRateLimiter) AllowMessage(ctx context.Context, userID uuid.UUID) (bool, error) {
	if l.cfg.MessageLimit <= 0 {
		return true, nil
	}
	scope := fmt.Sprintf("chat:send:%s", userID)
	allowed, _, err := l.client.FixedWindowAllow(ctx, scope, int64(l.cfg.MessageLimit), l.cfg.MessageWindow)
	if err != nil {
		return false, err
	}
	return allowed, nil
}
