package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitExtractHigherThanAnalysis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	groupFor := func(c *gin.Context) string {
		if c.FullPath() == "/api/v1/extract" {
			return "EXTRACT"
		}
		return "ANALYSIS"
	}

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		DefaultGroup: "ANALYSIS",
		GroupFor:     groupFor,
		Limiter:      limiter,
		Rules: map[string]RateLimitRule{
			"ANALYSIS": {Rate: 1, Burst: 2},
			"EXTRACT":  {Rate: 5, Burst: 10},
		},
	}))

	r.POST("/api/v1/extract", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/api/v1/analyses/resume", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("extract request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/resume", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("analysis request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/resume", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("analysis request 3 expected 429, got %d", resp.Code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Limiter: limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT": {Rate: 1, Burst: 1},
		},
	}))
	r.GET("/api/v1/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil)
	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, req1)
	if resp1.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil)
	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if got := resp2.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After 1, got %q", got)
	}

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" {
		t.Fatalf("expected code rate_limited, got %q", payload.Error.Code)
	}
	if _, ok := payload.Error.Details["retryAfterMs"]; !ok {
		t.Fatalf("expected retryAfterMs in details")
	}
}

func TestRateLimitSeparatesPrincipals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Limiter:      NewRateLimiter(func() time.Time { return now }),
		PrincipalFor: func(c *gin.Context) string { return c.GetHeader("X-Caller") },
		Rules:        map[string]RateLimitRule{"DEFAULT": {Rate: 1, Burst: 1}},
	}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, caller := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Caller", caller)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("caller %s expected 204, got %d", caller, resp.Code)
		}
	}
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 2, Burst: 1}

	if ok, _ := limiter.Allow("k", rule); !ok {
		t.Fatalf("expected first token")
	}
	ok, wait := limiter.Allow("k", rule)
	if ok || wait != 500*time.Millisecond {
		t.Fatalf("expected denial with 500ms wait, got %v %v", ok, wait)
	}
	now = now.Add(500 * time.Millisecond)
	if ok, _ := limiter.Allow("k", rule); !ok {
		t.Fatalf("expected refilled token")
	}
}

func TestRateLimitBoundsRotatingPrincipalsPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Limiter:        NewRateLimiter(func() time.Time { return now }),
		PrincipalFor:   func(c *gin.Context) string { return c.GetHeader("X-Caller") },
		ClientIPFactor: 2,
		Rules:          map[string]RateLimitRule{"DEFAULT": {Rate: 1, Burst: 1}},
	}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(caller, ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		req.Header.Set("X-Caller", caller)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := send("k1", "10.0.0.1"); code != http.StatusNoContent {
		t.Fatalf("k1 expected 204, got %d", code)
	}
	if code := send("k2", "10.0.0.1"); code != http.StatusNoContent {
		t.Fatalf("k2 expected 204, got %d", code)
	}
	if code := send("k3", "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("k3 from the same address expected 429, got %d", code)
	}
	if code := send("k4", "10.0.0.2"); code != http.StatusNoContent {
		t.Fatalf("k4 from another address expected 204, got %d", code)
	}
}

func TestRateLimiterAllowAllIsAllOrNothing(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	if ok, _ := limiter.Allow("shared", rule); !ok {
		t.Fatalf("expected first token")
	}
	if ok, _ := limiter.AllowAll(RateCheck{Key: "fresh", Rule: rule}, RateCheck{Key: "shared", Rule: rule}); ok {
		t.Fatalf("expected denial while shared bucket is empty")
	}
	if ok, _ := limiter.Allow("fresh", rule); !ok {
		t.Fatalf("expected denied request to leave the fresh bucket untouched")
	}
}

func TestRateLimiterEvictsIdleFullBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	for _, key := range []string{"a", "b", "c"} {
		limiter.Allow(key, rule)
	}
	if got := limiter.Len(); got != 3 {
		t.Fatalf("expected 3 buckets, got %d", got)
	}

	now = now.Add(2 * defaultIdleTTL)
	limiter.Allow("d", rule)
	if got := limiter.Len(); got != 1 {
		t.Fatalf("expected idle buckets evicted, got %d", got)
	}
}
