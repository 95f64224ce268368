package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory stand-in for the idempotency record store
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	// failing simulates Redis being unreachable
	failing bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return redis.NewStringResult("", context.DeadlineExceeded)
	}
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return redis.NewStatusResult("", context.DeadlineExceeded)
	}
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return redis.NewBoolResult(false, context.DeadlineExceeded)
	}
	if _, exists := f.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func newIdempotencyRouter(store RedisClient) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)

	calls := 0
	cfg := DefaultIdempotencyConfig(store)
	cfg.SkipPaths = []string{"/health*"}

	router := gin.New()
	router.Use(UserIdentity())
	router.Use(IdempotencyMiddleware(cfg))
	router.POST("/api/v1/events/:id/registrations", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"registration_id": "r1", "status": "confirmed"})
	})
	router.GET("/api/v1/events/:id", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.POST("/health/reload", func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})
	return router, &calls
}

func registerRequest(key, attendee, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/e1/registrations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	if attendee != "" {
		req.Header.Set(UserIDHeader, attendee)
	}
	return req
}

func TestIdempotencyMiddleware_MissingKey(t *testing.T) {
	router, calls := newIdempotencyRouter(newFakeRedis())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, registerRequest("", "alice", `{"attendee_id":"alice"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_IDEMPOTENCY_KEY")
	assert.Equal(t, 0, *calls)
}

func TestIdempotencyMiddleware_ReplayReturnsCachedResponse(t *testing.T) {
	router, calls := newIdempotencyRouter(newFakeRedis())
	body := `{"attendee_id":"alice"}`

	first := httptest.NewRecorder()
	router.ServeHTTP(first, registerRequest("key-1", "alice", body))
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, 1, *calls)

	// Same key and payload replays the stored response without a second
	// admission
	second := httptest.NewRecorder()
	router.ServeHTTP(second, registerRequest("key-1", "alice", body))
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, *calls)
}

func TestIdempotencyMiddleware_KeyReuseWithDifferentPayload(t *testing.T) {
	router, calls := newIdempotencyRouter(newFakeRedis())

	first := httptest.NewRecorder()
	router.ServeHTTP(first, registerRequest("key-1", "alice", `{"attendee_id":"alice"}`))
	require.Equal(t, http.StatusCreated, first.Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, registerRequest("key-1", "alice", `{"attendee_id":"bob"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	assert.Equal(t, 1, *calls)
}

func TestIdempotencyMiddleware_DifferentCallersHashDifferently(t *testing.T) {
	router, calls := newIdempotencyRouter(newFakeRedis())
	body := `{"attendee_id":"shared"}`

	first := httptest.NewRecorder()
	router.ServeHTTP(first, registerRequest("key-1", "alice", body))
	require.Equal(t, http.StatusCreated, first.Code)

	// Same key from another caller is a reuse, not a replay
	w := httptest.NewRecorder()
	router.ServeHTTP(w, registerRequest("key-1", "bob", body))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, *calls)
}

func TestIdempotencyMiddleware_InProgressConflict(t *testing.T) {
	store := newFakeRedis()
	router, calls := newIdempotencyRouter(store)
	body := `{"attendee_id":"alice"}`

	// Seed a processing record as if a concurrent request holds the key
	first := registerRequest("key-1", "alice", body)
	rec := &IdempotencyRecord{
		Key:         "key-1",
		Status:      StatusProcessing,
		RequestHash: fingerprintFor(t, router, first, body),
		CreatedAt:   time.Now(),
	}
	claimKey(context.Background(), store, IdempotencyKeyPrefix+"key-1", rec, time.Minute)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, registerRequest("key-1", "alice", body))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_IN_PROGRESS")
	assert.Equal(t, 0, *calls)
}

// fingerprintFor computes the hash the middleware would assign the request
func fingerprintFor(t *testing.T, _ *gin.Engine, req *http.Request, body string) string {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	if userID := req.Header.Get(UserIDHeader); userID != "" {
		c.Set(ContextKeyUserID, userID)
	}
	return requestFingerprint(c, []byte(body))
}

func TestIdempotencyMiddleware_SkipsReadsAndSkipPaths(t *testing.T) {
	router, calls := newIdempotencyRouter(newFakeRedis())

	// GET never needs a key
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events/e1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Wildcard skip path bypasses the key requirement even on POST
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health/reload", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 2, *calls)
}

func TestIdempotencyMiddleware_FailsOpenWhenRedisDown(t *testing.T) {
	store := newFakeRedis()
	store.failing = true
	router, calls := newIdempotencyRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, registerRequest("key-1", "alice", `{"attendee_id":"alice"}`))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, *calls)
}
