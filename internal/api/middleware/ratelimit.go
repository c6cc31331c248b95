package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/gameshelf/gameshelf/internal/api/metrics"
)

const limiterCleanupInterval = 5 * time.Minute

// RateLimitConfig allows RequestsPerMinute with bursts up to Burst per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// IPExtractor picks how the client address is derived. Without trusted
// proxies only the socket peer counts, so forwarding headers sent by clients
// are ignored. With trusted proxy ranges, X-Forwarded-For is walked from the
// right and the first untrusted hop wins.
func IPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipnet, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(ipnet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

// clientIP uses the extractor configured on the echo instance and falls back
// to the socket peer, never to client-supplied headers.
func clientIP(c echo.Context) string {
	if extract := c.Echo().IPExtractor; extract != nil {
		return extract(c.Request())
	}
	return echo.ExtractIPDirect()(c.Request())
}

type ipLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	mu          sync.Mutex
	lastCleanup time.Time
}

func (l *ipLimiter) get(key string) *rate.Limiter {
	if lim, ok := l.limiters.Load(key); ok {
		return lim.(*rate.Limiter)
	}
	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	l.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket is full, i.e. idle clients.
func (l *ipLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < limiterCleanupInterval {
		return
	}
	l.lastCleanup = time.Now()
	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimit rejects requests over the per-IP budget with 429. A
// non-positive RequestsPerMinute disables limiting.
func RateLimit(cfg RateLimitConfig, log zerolog.Logger) echo.MiddlewareFunc {
	if cfg.RequestsPerMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	l := &ipLimiter{
		rate:        rate.Limit(float64(cfg.RequestsPerMinute) / time.Minute.Seconds()),
		burst:       burst,
		lastCleanup: time.Now(),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			key := clientIP(c)
			lim := l.get(key)
			if lim.Allow() {
				return next(c)
			}

			r := lim.Reserve()
			delay := r.Delay()
			r.Cancel()
			retryAfter := max(int(delay.Seconds()), 1)

			log.Warn().Str("ip", key).Str("path", req.URL.Path).Int("retry_after", retryAfter).Msg("rate limit exceeded")
			metrics.RateLimitedTotal.WithLabelValues(req.URL.Path).Inc()

			c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
		}
	}
}
