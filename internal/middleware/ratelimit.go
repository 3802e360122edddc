package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is the fixed counting window per IP.
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests per window.
	RateLimitMaxRequests = 60
	// rateLimitKeyPrefix is the Redis key prefix for per-IP counters.
	rateLimitKeyPrefix = "ratelimit:"
	// blockedIPKeyPrefix is the Redis key prefix for blocked IPs.
	blockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked after exceeding
	// the limit.
	BlockedIPDuration = 1 * time.Hour
)

// RateLimit is a Redis fixed-window per-IP limiter. IPs that exceed the
// window limit are blocked for BlockedIPDuration. Redis failures fail open:
// a broken limiter must not take the API down.
func RateLimit(client *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ctx := context.Background()

			blocked, err := client.Exists(ctx, blockedIPKeyPrefix+ip).Result()
			if err == nil && blocked > 0 {
				writeRateLimited(w, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
				return
			}

			key := rateLimitKeyPrefix + ip
			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(ctx, key, RateLimitWindow)
			}

			if count > RateLimitMaxRequests {
				client.Set(ctx, blockedIPKeyPrefix+ip, "1", BlockedIPDuration)
				writeRateLimited(w, "Rate limit exceeded. Your IP has been temporarily blocked. Please try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(RateLimitMaxRequests-count, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(RateLimitWindow).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimited(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}

// clientIP extracts the caller's IP, honoring proxy headers first.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
