package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"nextcv/internal/shared/server/respond"
)

const (
	defaultRateLimitGroup = "DEFAULT"
	defaultIdleTTL        = time.Minute
)

type RateLimitRule struct {
	Rate  float64
	Burst int
}

type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	// PrincipalFor names the caller a bucket belongs to. Defaults to the client IP.
	PrincipalFor func(*gin.Context) string
	// ClientIPFactor, when positive, also charges a per-IP bucket scaled by
	// this factor for requests whose principal is not the IP, so rotating
	// principals from one address stays bounded.
	ClientIPFactor float64
	Limiter        *RateLimiter
}

// RateCheck is one bucket a request must draw a token from.
type RateCheck struct {
	Key  string
	Rule RateLimitRule
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter keeps one token bucket per principal and group. Buckets that
// are idle and full again are evicted.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	now       func() time.Time
	idleTTL   time.Duration
	lastSweep time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		now:      now,
		idleTTL:  defaultIdleTTL,
	}
}

// Len reports how many buckets are held.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}
		principal := ""
		if cfg.PrincipalFor != nil {
			principal = strings.TrimSpace(cfg.PrincipalFor(c))
		}
		ip := strings.TrimSpace(c.ClientIP())
		checks := make([]RateCheck, 0, 2)
		if principal == "" {
			checks = append(checks, RateCheck{Key: ip + "|" + group, Rule: rule})
		} else {
			checks = append(checks, RateCheck{Key: principal + "|" + group, Rule: rule})
			if cfg.ClientIPFactor > 0 {
				checks = append(checks, RateCheck{Key: "ip:" + ip + "|" + group, Rule: RateLimitRule{
					Rate:  rule.Rate * cfg.ClientIPFactor,
					Burst: int(math.Ceil(float64(rule.Burst) * cfg.ClientIPFactor)),
				}})
			}
		}
		allowed, retryAfter := cfg.Limiter.AllowAll(checks...)
		if allowed {
			c.Next()
			return
		}
		retryAfterMs := int(retryAfter / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests, please slow down", gin.H{
			"retryAfterMs": retryAfterMs,
		})
	}
}

// Allow takes one token from key's bucket, reporting how long to wait when
// none is left.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	return l.AllowAll(RateCheck{Key: key, Rule: rule})
}

// AllowAll takes one token from every bucket or from none of them, reporting
// the longest wait when any bucket is empty.
func (l *RateLimiter) AllowAll(checks ...RateCheck) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	l.sweepLocked(now)
	lims := make([]*rate.Limiter, 0, len(checks))
	for _, chk := range checks {
		if chk.Rule.Rate <= 0 || chk.Rule.Burst <= 0 {
			continue
		}
		entry, ok := l.limiters[chk.Key]
		if !ok {
			entry = &limiterEntry{lim: rate.NewLimiter(rate.Limit(chk.Rule.Rate), chk.Rule.Burst)}
			l.limiters[chk.Key] = entry
		}
		entry.seen = now
		lims = append(lims, entry.lim)
	}
	l.mu.Unlock()

	reservations := make([]*rate.Reservation, 0, len(lims))
	cancel := func() {
		for _, res := range reservations {
			res.CancelAt(now)
		}
	}
	var wait time.Duration
	for _, lim := range lims {
		res := lim.ReserveN(now, 1)
		if !res.OK() {
			cancel()
			return false, time.Second
		}
		reservations = append(reservations, res)
		if d := res.DelayFrom(now); d > wait {
			wait = d
		}
	}
	if wait == 0 {
		return true, 0
	}
	cancel()
	return false, wait
}

// sweepLocked drops buckets idle for idleTTL whose tokens have refilled to
// the burst, since a fresh bucket behaves the same.
func (l *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for key, entry := range l.limiters {
		if now.Sub(entry.seen) >= l.idleTTL && entry.lim.TokensAt(now) >= float64(entry.lim.Burst()) {
			delete(l.limiters, key)
		}
	}
}
