package integration

import (
	"context"
	"os"
	"testing"

	"task_manager/internal/db"
	"task_manager/internal/domain"
	"task_manager/internal/repository"
	"task_manager/internal/repository/storetest"

	"github.com/jackc/pgx/v5/pgxpool"
)

// connectPostgres opens DATABASE_URL with migrations applied, or skips.
func connectPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := db.ConnectPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), `TRUNCATE tasks`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func TestPostgresTaskRepository(t *testing.T) {
	pool := connectPostgres(t)

	storetest.Run(t, func(t *testing.T) repository.TaskStore {
		truncate(t, pool)
		return repository.NewTaskRepository(pool)
	})
}

func TestPostgresTaskRepository_ConcurrentUpdates(t *testing.T) {
	pool := connectPostgres(t)
	truncate(t, pool)
	repo := repository.NewTaskRepository(pool)
	ctx := context.Background()

	task := &domain.Task{Title: "shared"}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	id := task.ID

	// row locking keeps each read-modify-write whole
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			desc := "writer"
			done := i%2 == 0
			_, err := repo.Update(ctx, id, domain.TaskPatch{Description: &desc, Completed: &done})
			errs <- err
		}(i)
	}
	for i := 0; i < 10; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "shared" || got.Description != "writer" || got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("unexpected final row: %+v", got)
	}
}
