package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/foundersportal/portal/backend/go-services/pkg/metrics"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const rateLimitMessage = "Too many requests, please try again later."

// limiterStore holds per-key token buckets for one middleware instance.
// A bucket left idle for idle has refilled completely, so it is dropped and
// recreated on the next request.
type limiterStore struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rps       float64
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	idle := time.Minute
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &limiterStore{buckets: map[string]*bucket{}, rps: rps, burst: burst, idle: idle, now: time.Now}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		for k, b := range s.buckets {
			if now.Sub(b.seen) >= s.idle {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

// rateKey prefers the authenticated subject, falling back to client IP.
func rateKey(c *gin.Context) string {
	if sub := ClaimString(c, "sub"); sub != "" {
		return "sub:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket per-key limit.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	return func(c *gin.Context) {
		if !store.get(rateKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			response.Fail(c, http.StatusTooManyRequests, rateLimitMessage)
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

type window struct {
	start time.Time
	count int
}

// LoginLimiter allows max attempts per client IP within each fixed window.
// A nil counter selects the in-process counter.
func LoginLimiter(counter WindowCounter, max int, win time.Duration) gin.HandlerFunc {
	if counter == nil {
		counter = NewMemoryWindowCounter()
	}
	return func(c *gin.Context) {
		n, err := counter.Incr(c.Request.Context(), "login:"+c.ClientIP(), win)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, "Rate limit check failed")
			return
		}
		if n > max {
			c.Header("Retry-After", formatSeconds(win))
			metrics.RateLimitRejected.WithLabelValues("login").Inc()
			response.Fail(c, http.StatusTooManyRequests, "Too many login attempts, please try again later.")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("login").Inc()
		c.Next()
	}
}
