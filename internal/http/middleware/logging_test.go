package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "info", false)
	defer logger.Init("info", false)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) {
		logger.WithContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusOK)
	})

	w := doGet(r, "/ping", map[string]string{RequestIDHeader: "req-123"})
	if w.Header().Get(RequestIDHeader) != "req-123" {
		t.Fatalf("request id not echoed: %q", w.Header().Get(RequestIDHeader))
	}
	out := buf.String()
	if strings.Count(out, "request_id=req-123") != 2 {
		t.Fatalf("expected handler and access lines tagged, got %q", out)
	}

	w = doGet(r, "/ping", nil)
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestMetrics_CountsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := HTTPRequests.WithLabelValues(http.MethodGet, "/items/:id", "200")
	before := testutil.ToFloat64(counter)
	doGet(r, "/items/1", nil)
	doGet(r, "/items/2", nil)
	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Fatalf("expected 2 requests counted, got %v", got)
	}

	unmatched := HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")
	before = testutil.ToFloat64(unmatched)
	doGet(r, "/nope", nil)
	if got := testutil.ToFloat64(unmatched) - before; got != 1 {
		t.Fatalf("expected unmatched request counted, got %v", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := map[string]string{"Origin": "https://app.example"}
	w := doGet(r, "/x", req)
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Fatalf("origin not reflected")
	}
}
