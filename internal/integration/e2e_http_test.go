package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpserver "task_manager/internal/http"
	"task_manager/internal/repository"
)

func TestE2E_HTTP_Workflow(t *testing.T) {
	pool := connectPostgres(t)
	truncate(t, pool)

	gin.SetMode(gin.TestMode)
	r := httpserver.NewEngine()
	httpserver.RegisterRoutes(r, repository.NewTaskRepository(pool), "e2e")

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := srv.Client()
	call := func(method, path, body string) (int, []byte) {
		t.Helper()
		var rd io.Reader
		if body != "" {
			rd = bytes.NewBufferString(body)
		}
		req, err := http.NewRequest(method, srv.URL+path, rd)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		res, err := client.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		defer res.Body.Close()
		b, _ := io.ReadAll(res.Body)
		return res.StatusCode, b
	}

	code, body := call(http.MethodPost, "/api/v1/tasks", `{"title":"Workflow Test","description":"Testing complete workflow"}`)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %s", code, body)
	}
	var created struct {
		ID        int64  `json:"id"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	path := fmt.Sprintf("/api/v1/tasks/%d", created.ID)

	code, first := call(http.MethodGet, path, "")
	if code != http.StatusOK {
		t.Fatalf("get: %d", code)
	}
	if _, again := call(http.MethodGet, path, ""); !bytes.Equal(first, again) {
		t.Fatalf("repeated GET differs: %s vs %s", first, again)
	}

	code, body = call(http.MethodPut, path, `{"completed":true}`)
	if code != http.StatusOK || !bytes.Contains(body, []byte(`"completed":true`)) {
		t.Fatalf("update: %d %s", code, body)
	}
	if !bytes.Contains(body, []byte(`"created_at":"`+created.CreatedAt+`"`)) {
		t.Fatalf("created_at changed on update: %s", body)
	}

	if code, _ := call(http.MethodPut, path, `{}`); code != http.StatusBadRequest {
		t.Fatalf("empty update: %d", code)
	}
	if code, _ := call(http.MethodDelete, path, ""); code != http.StatusNoContent {
		t.Fatalf("delete: %d", code)
	}
	if code, _ := call(http.MethodGet, path, ""); code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", code)
	}
}
