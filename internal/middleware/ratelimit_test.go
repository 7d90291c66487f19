package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLimitedHandler(t *testing.T, mr *miniredis.Miniredis, limit int) http.Handler {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	config := RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "vending_rate_limit",
	}
	return RateLimitMiddleware(client, config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products/all", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Feature: vending-inventory, rate limiting blocks excessive requests
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("exactly the limit passes within one window", prop.ForAll(
		func(limit int, excess int) bool {
			mr, err := miniredis.Run()
			if err != nil {
				t.Logf("FAIL: start miniredis: %v", err)
				return false
			}
			defer mr.Close()

			handler := newLimitedHandler(t, mr, limit)

			passed, blocked := 0, 0
			for i := 0; i < limit+excess; i++ {
				switch hit(handler, "192.168.1.100:5555").Code {
				case http.StatusOK:
					passed++
				case http.StatusTooManyRequests:
					blocked++
				}
			}
			return passed == limit && blocked == excess
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimitHeadersAndWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	handler := newLimitedHandler(t, mr, 2)

	w := hit(handler, "10.0.0.1:1000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	ttl := mr.TTL("vending_rate_limit:10.0.0.1")
	assert.Equal(t, time.Minute, ttl)

	hit(handler, "10.0.0.1:1001")
	w = hit(handler, "10.0.0.1:1002")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retryAfter)

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:1000").Code, "other clients keep their own window")

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1003").Code, "window resets after expiry")
}

func TestRateLimitFailsOpenWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	handler := newLimitedHandler(t, mr, 1)
	mr.Close()

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1000").Code)
}
