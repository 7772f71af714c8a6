// Package storetest holds the behavioural checks every TaskStore must pass.
// Backends call Run from their own tests with a fresh, empty store.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

// Run executes the store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) repository.TaskStore) {
	t.Helper()

	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, newStore(t)) })
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("CreateRequiresTitle", func(t *testing.T) { testCreateRequiresTitle(t, newStore(t)) })
	t.Run("ListInsertionOrder", func(t *testing.T) { testListInsertionOrder(t, newStore(t)) })
	t.Run("PartialUpdate", func(t *testing.T) { testPartialUpdate(t, newStore(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("UpdateRejectsEmptyTitle", func(t *testing.T) { testUpdateRejectsEmptyTitle(t, newStore(t)) })
	t.Run("DeleteIsPermanent", func(t *testing.T) { testDeleteIsPermanent(t, newStore(t)) })
	t.Run("IDsNeverReused", func(t *testing.T) { testIDsNeverReused(t, newStore(t)) })
}

func testListEmpty(t *testing.T, s repository.TaskStore) {
	tasks, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tasks)
	}
}

func testCreateAndGet(t *testing.T, s repository.TaskStore) {
	ctx := context.Background()
	task := &domain.Task{Title: "X", Description: "Y"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if task.CreatedAt.IsZero() || !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("expected created_at == updated_at, got %v / %v", task.CreatedAt, task.UpdatedAt)
	}

	got, err := s.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "X" || got.Description != "Y" || got.Completed {
		t.Fatalf("unexpected task: %+v", got)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) || !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("timestamps changed on read: %+v vs %+v", got, task)
	}

	again, err := s.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !sameTask(again, got) {
		t.Fatalf("repeated get differs: %+v vs %+v", again, got)
	}

	if _, err := s.Get(ctx, task.ID+1000); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func testCreateRequiresTitle(t *testing.T, s repository.TaskStore) {
	ctx := context.Background()
	if err := s.Create(ctx, &domain.Task{Description: "no title"}); !errors.Is(err, domain.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected nothing persisted, got %d", len(tasks))
	}
}

func testListInsertionOrder(t *testing.T, s repository.TaskStore) {
	ctx := context.Background()
	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if err := s.Create(ctx, &domain.Task{Title: title}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != len(titles) {
		t.Fatalf("expected %d tasks, got %d", len(titles), len(tasks))
	}
	for i, task := range tasks {
		if task.Title != titles[i] {
			t.Fatalf("tasks[%d] = %q; want %q", i, task.Title, titles[i])
		}
		if i > 0 && task.ID <= tasks[i-1].ID {
			t.Fatalf("ids not increasing: %d after %d", task.ID, tasks[i-1].ID)
		}
	}
}

func testPartialUpdate(t *testing.T, s repository.TaskStore) {
	ctx := context.Background()
	task := &domain.Task{Title: "title", Description: "desc"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	time.Sleep(2 * time.Millisecond)
	done := true
	updated, err := s.Update(ctx, task.ID, domain.TaskPatch{Completed: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "title" || updated.Description != "desc" || !updated.Completed {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.CreatedAt.Equal(task.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", task.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) {
		t.Fatalf("expected updated_at to advance: %v -> %v", task.UpdatedAt, updated.UpdatedAt)
	}

	got, err := s.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !sameTask(got, updated) {
		t.Fatalf("persisted task differs from update result: %+v vs %+v", got, updated)
	}
}

func testUpdateMissing(t *testing.T, s repository.TaskStore) {
	title := "nope"
	if _, err := s.Update(context.Background(), 1<<40, domain.TaskPatch{Title: &title}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func testUpdateRejectsEmptyTitle(t *testing.T, s repository.TaskStore) {
	ctx := context.Background()
	task := &domain.Task{Title: "keep me"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	empty := ""
	if _, err := s.Update(ctx, task.ID, domain.TaskPatch{Title: &empty}); !errors.Is(err, domain.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}

	got, err := s.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "keep me" || !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("rejected update leaked: %+v", got)
	}
}

func testDeleteIsPermanent(t *testing.T, s repository.TaskStore) {
	ctx := context.Background()
	task := &domain.Task{Title: "doomed"}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func testIDsNeverReused(t *testing.T, s repository.TaskStore) {
	ctx := context.Background()
	first := &domain.Task{Title: "a"}
	second := &domain.Task{Title: "b"}
	if err := s.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	third := &domain.Task{Title: "c"}
	if err := s.Create(ctx, third); err != nil {
		t.Fatalf("create: %v", err)
	}
	if third.ID <= second.ID {
		t.Fatalf("id %d reused after deleting %d", third.ID, second.ID)
	}
}

func sameTask(a, b *domain.Task) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.Completed == b.Completed &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}
