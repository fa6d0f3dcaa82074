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

func newRateLimitedHandler(t *testing.T, mr *miniredis.Miniredis, limit int) http.Handler {
	t.Helper()
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	config := RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "test_upload_limit",
	}

	return RateLimitMiddleware(redisClient, config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
}

func uploadRequest(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/upload/image", nil)
	req.RemoteAddr = remoteAddr
	return req
}

// Uploads beyond the window budget are rejected with 429.
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("excessive requests are blocked with 429", prop.ForAll(
		func(requestsPerWindow int, excessRequests int) bool {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("Failed to start miniredis: %v", err)
				return false
			}
			defer mr.Close()

			handler := newRateLimitedHandler(t, mr, requestsPerWindow)

			successCount, blockedCount := 0, 0
			for i := 0; i < requestsPerWindow+excessRequests; i++ {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, uploadRequest("192.168.1.100:5123"))

				switch w.Code {
				case http.StatusCreated:
					successCount++
				case http.StatusTooManyRequests:
					blockedCount++
				}
			}

			return successCount == requestsPerWindow && blockedCount == excessRequests
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimit_ClientsAreCountedSeparatelyRegardlessOfPort(t *testing.T) {
	mr := miniredis.RunT(t)
	handler := newRateLimitedHandler(t, mr, 1)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, uploadRequest("10.0.0.1:1000"))
	require.Equal(t, http.StatusCreated, w.Code)

	// Same host from another source port shares the budget.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, uploadRequest("10.0.0.1:2000"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, uploadRequest("10.0.0.2:1000"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRateLimit_HeadersAndWindowReset(t *testing.T) {
	mr := miniredis.RunT(t)
	handler := newRateLimitedHandler(t, mr, 3)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, uploadRequest("10.0.0.3:1"))
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, strconv.Itoa(2), w.Header().Get("X-RateLimit-Remaining"))

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), uploadRequest("10.0.0.3:1"))
	}

	mr.FastForward(time.Minute + time.Second)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, uploadRequest("10.0.0.3:1"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	handler := newRateLimitedHandler(t, mr, 1)
	mr.Close()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, uploadRequest("10.0.0.4:1"))
	assert.Equal(t, http.StatusCreated, w.Code)
}
