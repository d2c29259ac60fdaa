package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/macspp/lead-intake/pkg/logging"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request from key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter provides per-client rate limiting using a token bucket held
// in process memory.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps requests/sec with the given
// burst size per key. Call Close to stop the eviction loop.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    limit,
		burst:   burst,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a request from key is within the limit.
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1), nil
}

// Close stops the background eviction loop.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}
		rl.evictIdle(10 * time.Minute)
	}
}

func (rl *RateLimiter) evictIdle(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-idle)
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// windowScript increments the counter and sets its expiry in one step. A key
// found without a TTL gets one, so a counter can never outlive its window.
var windowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisRateLimiter shares a fixed-window counter across instances, so
// limits hold when the intake runs on several hosts or lambdas.
type RedisRateLimiter struct {
	client redis.Scripter
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisRateLimiter allows burst requests per window of burst/rate
// seconds, which averages out to rate requests/sec.
func NewRedisRateLimiter(client redis.Scripter, rps float64, burst int) *RedisRateLimiter {
	if burst < 1 {
		burst = 1
	}
	window := time.Second
	if rps > 0 {
		window = time.Duration(float64(burst) / rps * float64(time.Second))
	}
	if window < time.Second {
		window = time.Second
	}
	return &RedisRateLimiter{
		client: client,
		limit:  int64(burst),
		window: window,
		prefix: "leadintake:ratelimit:",
	}
}

// Allow increments the caller's counter for the current window.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := windowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("ratelimit: window: %w", err)
	}
	return count <= l.limit, nil
}

// RateLimit rejects requests exceeding the limiter with 429 Too Many
// Requests. Limiter errors let the request through.
func RateLimit(limiter Limiter, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", "error", err, "remote_ip", key)
				allowed = true
			}
			if !allowed {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// Prefer X-Real-Ip set by chi's RealIP middleware.
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

var (
	_ Limiter = (*RateLimiter)(nil)
	_ Limiter = (*RedisRateLimiter)(nil)
)
