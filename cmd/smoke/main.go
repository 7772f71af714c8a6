package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"task_manager/internal/service"
)

type task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = fmt.Sprintf("http://127.0.0.1:%s/api/v1", port)
	}

	var token string
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		issuer, err := service.NewTokenIssuer(secret, time.Hour)
		if err != nil {
			log.Fatalf("token issuer: %v", err)
		}
		if token, err = issuer.Generate("smoke"); err != nil {
			log.Fatalf("gen token: %v", err)
		}
	}

	client := &http.Client{Timeout: 5 * time.Second}
	call := func(method, path, body string, want int) []byte {
		var rd io.Reader
		if body != "" {
			rd = bytes.NewBufferString(body)
		}
		req, err := http.NewRequest(method, base+path, rd)
		if err != nil {
			log.Fatalf("%s %s: %v", method, path, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		res, err := client.Do(req)
		if err != nil {
			log.Fatalf("%s %s: %v", method, path, err)
		}
		defer res.Body.Close()
		b, _ := io.ReadAll(res.Body)
		if res.StatusCode != want {
			log.Fatalf("%s %s: got %d want %d: %s", method, path, res.StatusCode, want, b)
		}
		log.Printf("%s %s -> %d", method, path, res.StatusCode)
		return b
	}

	var created task
	b := call(http.MethodPost, "/tasks", `{"title":"Workflow Test","description":"Testing complete workflow"}`, http.StatusCreated)
	if err := json.Unmarshal(b, &created); err != nil {
		log.Fatalf("decode created task: %v", err)
	}
	path := fmt.Sprintf("/tasks/%d", created.ID)

	call(http.MethodGet, path, "", http.StatusOK)

	var updated task
	b = call(http.MethodPut, path, `{"completed":true}`, http.StatusOK)
	if err := json.Unmarshal(b, &updated); err != nil || !updated.Completed {
		log.Fatalf("update not applied: %s", b)
	}

	call(http.MethodPut, path, `{}`, http.StatusBadRequest)
	call(http.MethodDelete, path, "", http.StatusNoContent)
	call(http.MethodGet, path, "", http.StatusNotFound)

	log.Println("smoke test finished")
}
