package domain

import (
	"errors"
	"time"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTitleRequired = errors.New("title is required")
)

// Task is the single persisted entity of the service.
type Task struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TaskPatch carries a partial update. Nil fields keep their stored value.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Apply copies the supplied fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// Touch sets UpdatedAt to now, never earlier than CreatedAt.
func (t *Task) Touch(now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

// Now returns the store timestamp: UTC, microsecond precision so the
// value survives a round trip through Postgres unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
