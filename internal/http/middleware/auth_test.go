package middleware

import (
	"net/http"
	"testing"
	"time"

	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

func TestBearerAuth(t *testing.T) {
	issuer, err := service.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	token, err := issuer.Generate("ops")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := gin.New()
	r.GET("/secure", BearerAuth(issuer), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(SubjectKey))
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		h := map[string]string{}
		if tc.header != "" {
			h["Authorization"] = tc.header
		}
		w := doGet(r, "/secure", h)
		if w.Code != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, w.Code, tc.want)
		}
		if tc.want == http.StatusOK && w.Body.String() != "ops" {
			t.Fatalf("%s: subject = %q", tc.name, w.Body.String())
		}
	}
}

func TestBearerAuth_NilIssuerAllows(t *testing.T) {
	r := gin.New()
	r.GET("/open", BearerAuth(nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := doGet(r, "/open", nil); w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
}
