package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMiniLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client), mr
}

func doGet(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRedisLimiter_ByIPBlocksAfterMax(t *testing.T) {
	l, mr := newMiniLimiter(t)

	r := gin.New()
	r.GET("/test", l.ByIP(2, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		if w := doGet(r, "/test", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, w.Code)
		}
	}
	w := doGet(r, "/test", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", w.Code)
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected remaining header %q", w.Header().Get("X-RateLimit-Remaining"))
	}

	// window expiry resets the counter
	mr.FastForward(time.Minute + time.Second)
	if w := doGet(r, "/test", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 after window, got %d", w.Code)
	}
}

func TestRedisLimiter_BySubjectSeparatesSubjects(t *testing.T) {
	l, _ := newMiniLimiter(t)

	r := gin.New()
	r.GET("/write", func(c *gin.Context) {
		c.Set(SubjectKey, c.GetHeader("X-Sub"))
		c.Next()
	}, l.BySubject(1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	if w := doGet(r, "/write", map[string]string{"X-Sub": "a"}); w.Code != http.StatusNoContent {
		t.Fatalf("a first: got %d", w.Code)
	}
	if w := doGet(r, "/write", map[string]string{"X-Sub": "a"}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("a second: got %d", w.Code)
	}
	if w := doGet(r, "/write", map[string]string{"X-Sub": "b"}); w.Code != http.StatusNoContent {
		t.Fatalf("b first: got %d", w.Code)
	}
}

func TestRedisLimiter_RestoresMissingTTL(t *testing.T) {
	l, mr := newMiniLimiter(t)

	r := gin.New()
	r.GET("/test", l.ByIP(2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// counter stranded without an expiry
	key := "rl:60:192.0.2.1"
	if err := mr.Set(key, "5"); err != nil {
		t.Fatalf("seed key: %v", err)
	}

	if w := doGet(r, "/test", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", w.Code)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl to be restored, got %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if w := doGet(r, "/test", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 after window, got %d", w.Code)
	}
}

func TestRedisLimiter_FailOpen(t *testing.T) {
	var nilLimiter *RedisLimiter
	disabled := &RedisLimiter{}

	l, mr := newMiniLimiter(t)
	mr.Close()

	for name, h := range map[string]gin.HandlerFunc{
		"nil":        nilLimiter.ByIP(1, time.Minute),
		"no client":  disabled.ByIP(1, time.Minute),
		"redis down": l.ByIP(1, time.Minute),
	} {
		r := gin.New()
		r.GET("/test", h, func(c *gin.Context) { c.Status(http.StatusOK) })
		for i := 0; i < 3; i++ {
			if w := doGet(r, "/test", nil); w.Code != http.StatusOK {
				t.Fatalf("%s: request %d got %d", name, i, w.Code)
			}
		}
	}
}

func TestInitRedisRateLimiter_EmptyAddr(t *testing.T) {
	if l := InitRedisRateLimiter("", "", 0); l.Enabled() {
		t.Fatalf("expected disabled limiter")
	}
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRateLimitIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	pass := os.Getenv("REDIS_PASSWORD")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			db = n
		}
	}

	l := InitRedisRateLimiter(addr, pass, db)
	defer l.Close()
	if !l.Enabled() {
		t.Fatalf("expected redis at %s", addr)
	}

	// small window for test
	w := 2 * time.Second
	limit := 2

	r := gin.New()
	r.GET("/test", l.ByIP(limit, w), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := &http.Client{}

	for i := 0; i < limit; i++ {
		req, _ := http.NewRequest("GET", srv.URL+"/test", nil)
		res, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != 200 {
			t.Fatalf("expected 200 got %d", res.StatusCode)
		}
	}

	req, _ := http.NewRequest("GET", srv.URL+"/test", nil)
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != 429 {
		t.Fatalf("expected 429 got %d", res.StatusCode)
	}
}
