package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// KeyFunc picks the client a request is charged to. Defaults to the
	// client IP.
	KeyFunc func(c echo.Context) string
	// IdleTTL drops a client's limiter after this long without requests.
	// Defaults to DefaultIdleTTL.
	IdleTTL time.Duration
}

// DefaultIdleTTL bounds how long an idle client's limiter is remembered.
const DefaultIdleTTL = 10 * time.Minute

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		IdleTTL:           DefaultIdleTTL,
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds one limiter per client and forgets idle ones, so
// scanning a large range of addresses cannot grow it without bound.
type limiterStore struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	return &limiterStore{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.BurstSize,
		idleTTL: cfg.IdleTTL,
		now:     time.Now,
	}
}

// take charges one request to key and reports whether it is allowed, the
// whole tokens left, and how long until the next token when denied.
func (s *limiterStore) take(key string) (allowed bool, remaining int, wait time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		s.sweepLocked(now)
	}

	cl, ok := s.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = cl
	}
	cl.lastSeen = now

	if cl.limiter.AllowN(now, 1) {
		return true, int(math.Floor(cl.limiter.TokensAt(now))), 0
	}
	r := cl.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0, time.Second
	}
	wait = r.DelayFrom(now)
	r.CancelAt(now)
	return false, 0, wait
}

func (s *limiterStore) sweepLocked(now time.Time) {
	for key, cl := range s.clients {
		if now.Sub(cl.lastSeen) >= s.idleTTL {
			delete(s.clients, key)
		}
	}
	s.lastSweep = now
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RateLimit limits each client to cfg.RequestsPerSecond with bursts of
// cfg.BurstSize. A non-positive rate disables limiting. Denied requests get
// 429 with Retry-After in whole seconds.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return rateLimit(cfg, nil)
}

func rateLimit(cfg RateLimitConfig, store *limiterStore) echo.MiddlewareFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c echo.Context) string { return c.RealIP() }
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if store == nil {
		store = newLimiterStore(cfg)
	}
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.RequestsPerSecond <= 0 {
				return next(c)
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)

			allowed, remaining, wait := store.take(cfg.KeyFunc(c))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
