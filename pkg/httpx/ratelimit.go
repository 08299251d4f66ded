package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tally-team/tally/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters for a route.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed per Window.
	RequestsPerWindow int
	// Window is the time window for rate limiting.
	Window time.Duration
	// Burst allows temporary bursts above the steady rate.
	Burst int
}

// Route profiles. Invitation issuance/acceptance sit on Strict since they are
// the abuse-prone surfaces; report reads get Lenient.
var (
	StrictLimit   = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30}
	LenientLimit  = RateLimitConfig{RequestsPerWindow: 120, Window: time.Minute, Burst: 120}
)

// KeyExtractor groups requests for rate limiting (client IP, user id, ...).
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client IP, honouring X-Forwarded-For and
// X-Real-IP for proxied deployments.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// UserKeyExtractor returns the authenticated subject, or "" when absent.
func UserKeyExtractor(r *http.Request) string {
	return UserIDFromCtx(r.Context())
}

// RateLimitByIP limits requests per client IP.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByUser limits requests per authenticated user. Must sit inside
// AuthnMiddleware in the chain.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, UserKeyExtractor)
}

// limiterRegistry keeps one token bucket per key.
type limiterRegistry struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (lr *limiterRegistry) get(key string) *rate.Limiter {
	if l, ok := lr.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}

	actual, _ := lr.limiters.LoadOrStore(key, rate.NewLimiter(lr.rate, lr.burst))
	lr.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle limiters so ephemeral keys don't accumulate
// forever. A limiter with a full bucket hasn't been used recently.
func (lr *limiterRegistry) maybeCleanup() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if time.Since(lr.lastCleanup) < 5*time.Minute {
		return
	}
	lr.lastCleanup = time.Now()

	lr.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(lr.burst) {
			lr.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware enforces cfg per key produced by extract. Requests with
// no extractable key are allowed through; better a missed limit than a shared
// bucket for everyone.
func RateLimitMiddleware(cfg RateLimitConfig, extract KeyExtractor) Middleware {
	lr := &limiterRegistry{
		rate:        rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := extract(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			limiter := lr.get(key)
			if !limiter.Allow() {
				res := limiter.Reserve()
				delay := res.Delay()
				res.Cancel() // only probing for Retry-After, not consuming

				retryAfter := int(delay.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				log.Warn("rate limit exceeded", "key", key)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
