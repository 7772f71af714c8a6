package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task_manager/internal/domain"
)

// timestamps are stored as fixed-width UTC text so they sort and round-trip
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// SQLiteTaskRepository stores tasks in SQLite through database/sql.
type SQLiteTaskRepository struct {
	db *sql.DB
}

func NewSQLiteTaskRepository(db *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{db: db}
}

func (r *SQLiteTaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *SQLiteTaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanSQLiteTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *SQLiteTaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.Title == "" {
		return domain.ErrTitleRequired
	}

	now := domain.Now()
	stamp := now.Format(sqliteTimeLayout)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Completed, stamp, stamp,
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (r *SQLiteTaskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanSQLiteTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	patch.Apply(t)
	if t.Title == "" {
		return nil, domain.ErrTitleRequired
	}
	t.Touch(domain.Now())

	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, completed = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, t.Completed, t.UpdatedAt.Format(sqliteTimeLayout), id,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *SQLiteTaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *SQLiteTaskRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteTaskRepository) Close() {
	_ = r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (*domain.Task, error) {
	var (
		t                domain.Task
		created, updated string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseSQLiteTime(created); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseSQLiteTime(updated); err != nil {
		return nil, err
	}
	return &t, nil
}

func parseSQLiteTime(s string) (time.Time, error) {
	ts, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return ts.UTC(), nil
}
