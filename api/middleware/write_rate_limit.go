package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/responses"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// WriteRateLimitPolicy defines the throttling parameters for a write surface.
type WriteRateLimitPolicy struct {
	name    string
	window  time.Duration
	ipLimit int
}

// NewWriteRateLimitPolicy builds a policy with the supplied window and limit.
func NewWriteRateLimitPolicy(name string, window time.Duration, ipLimit int) WriteRateLimitPolicy {
	return WriteRateLimitPolicy{
		name:    strings.ToLower(strings.TrimSpace(name)),
		window:  window,
		ipLimit: ipLimit,
	}
}

func (p WriteRateLimitPolicy) enabled() bool {
	return p.window > 0 && p.ipLimit > 0
}

func (p WriteRateLimitPolicy) key(ip string) string {
	name := p.name
	if name == "" {
		name = "write"
	}
	return fmt.Sprintf("rl:ip:%s:%s", name, ip)
}

// WriteRateLimit enforces a per-IP counter on abuse-prone write endpoints.
// The store failing open is deliberate: a Redis outage should not take claim
// submission down with it.
func WriteRateLimit(policy WriteRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			count, err := store.IncrWithTTL(r.Context(), policy.key(ip), policy.window)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "rate_limit.store_error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(policy.ipLimit) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
