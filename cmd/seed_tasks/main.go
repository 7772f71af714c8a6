package main

import (
	"context"
	"log"
	"os"

	"task_manager/internal/db"
	"task_manager/internal/domain"
)

func main() {
	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := db.Open(ctx, dsn)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	existing, err := store.List(ctx)
	if err != nil {
		log.Fatalf("list tasks: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("store already has %d tasks, skipping seed\n", len(existing))
		return
	}

	samples := []*domain.Task{
		{Title: "Write the README", Description: "Document the endpoints and config"},
		{Title: "Set up CI", Description: "Run go test on every push"},
		{Title: "Ship v1", Completed: false},
	}
	for _, t := range samples {
		if err := store.Create(ctx, t); err != nil {
			log.Fatalf("create task %q failed: %v", t.Title, err)
		}
		log.Printf("task created id=%d title=%q\n", t.ID, t.Title)
	}

	// verify read
	tasks, err := store.List(ctx)
	if err != nil {
		log.Fatalf("list tasks: %v", err)
	}
	for _, t := range tasks {
		log.Printf("fetched task id=%d title=%q completed=%v created_at=%v\n", t.ID, t.Title, t.Completed, t.CreatedAt)
	}
}
