package api

import (
	"alcyxob/fittracker/internal/metrics"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/go-redis/redismock/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLimiter allows the first limit calls per key.
type countingLimiter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = map[string]int{}
	}
	l.calls[key]++
	if l.calls[key] > limit.Rate {
		return &redis_rate.Result{Limit: limit, Allowed: 0, RetryAfter: 30 * time.Second}, nil
	}
	return &redis_rate.Result{Limit: limit, Allowed: 1, Remaining: limit.Rate - l.calls[key]}, nil
}

func rateLimitedRouter(limiter RequestRateLimiter, perMin int, m *metrics.Manager) *gin.Engine {
	router := gin.New()
	router.Use(RateLimit(limiter, "auth", perMin, m))
	router.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestRateLimit(t *testing.T) {
	m := metrics.NewTestManager()
	router := rateLimitedRouter(&countingLimiter{}, 2, m)

	post := func() *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
		return rr
	}

	assert.Equal(t, http.StatusOK, post().Code)
	assert.Equal(t, http.StatusOK, post().Code)

	rr := post()
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRateLimited))
}

func TestRateLimit_RedisFailure(t *testing.T) {
	db, _ := redismock.NewClientMock()
	defer db.Close()
	// no expectations: the limiter script call fails
	limiter := redis_rate.NewLimiter(db)
	router := rateLimitedRouter(limiter, 5, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRouter_AuthRoutesRateLimited(t *testing.T) {
	m := newMockedRouter(t)
	m.router = NewRouter(RouterParams{
		Services:      Services{Auth: m.auth},
		Metrics:       m.metrics,
		RateLimiter:   &countingLimiter{},
		AuthPerMinute: 1,
	})

	// the first request passes the limiter and fails binding
	rr := m.do(t, http.MethodPost, "/api/v1/auth/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = m.do(t, http.MethodPost, "/api/v1/auth/login", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// routes outside the auth group are not limited
	rr = m.do(t, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
