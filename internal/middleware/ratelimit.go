// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitPrefix namespaces shared limiter counters in Valkey.
const rateLimitPrefix = "ratelimit:"

// RateLimiter caps the requests a client IP may make per window. It guards
// the login, signup and 2FA endpoints against password guessing.
//
// A limiter built with NewRateLimiter keeps a sliding window per IP in
// memory. One built with NewSharedRateLimiter counts fixed windows in
// Valkey so every server instance enforces the same budget.
type RateLimiter struct {
	limit  int
	window time.Duration
	client *redis.Client
	now    func() time.Time

	mu    sync.Mutex
	hits  map[string][]time.Time // ascending
	swept time.Time
}

// NewRateLimiter creates an in-memory limiter that allows limit requests
// per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

// NewSharedRateLimiter creates a limiter whose counters live in Valkey.
func NewSharedRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	rl := NewRateLimiter(limit, window)
	rl.client = client
	return rl
}

// Allow records a request for key and reports whether it is within the
// limit.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.client != nil {
		return rl.allowShared(ctx, key)
	}
	return rl.allowLocal(key)
}

func (rl *RateLimiter) allowLocal(key string) bool {
	now := rl.now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Drop idle clients at most once per window.
	if now.Sub(rl.swept) >= rl.window {
		for k, ts := range rl.hits {
			if len(since(ts, cutoff)) == 0 {
				delete(rl.hits, k)
			}
		}
		rl.swept = now
	}

	recent := since(rl.hits[key], cutoff)
	if len(recent) >= rl.limit {
		rl.hits[key] = recent
		return false
	}
	rl.hits[key] = append(recent, now)
	return true
}

// allowShared fails open when Valkey is unreachable.
func (rl *RateLimiter) allowShared(ctx context.Context, key string) bool {
	k := rateLimitPrefix + key
	pipe := rl.client.TxPipeline()
	count := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("rate limiter unavailable", "key", key, "error", err)
		return true
	}
	return count.Val() <= int64(rl.limit)
}

// since returns the suffix of ts later than cutoff.
func since(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r.Context(), clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "Too many attempts. Try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the address the limiter keys on. The rightmost
// X-Forwarded-For hop wins, since it is the one appended by the reverse
// proxy in front of the app; earlier hops are client-supplied. X-Real-IP
// and then RemoteAddr are used without it.
func clientIP(r *http.Request) string {
	if values := r.Header.Values("X-Forwarded-For"); len(values) > 0 {
		hops := strings.Split(values[len(values)-1], ",")
		if last := strings.TrimSpace(hops[len(hops)-1]); last != "" {
			return last
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
