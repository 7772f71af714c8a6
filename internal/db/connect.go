package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"task_manager/internal/logger"
	"task_manager/internal/migrations"
	"task_manager/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

// Open picks a backend from the DSN, prepares its schema and returns the
// task store. postgres:// and postgresql:// use pgx, sqlite: / file: or a
// bare path use SQLite.
func Open(ctx context.Context, dsn string) (repository.TaskStore, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pool, err := ConnectPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return repository.NewTaskRepository(pool), nil
	case dsn == "":
		return nil, fmt.Errorf("empty database url")
	default:
		sqlDB, err := ConnectSQLite(ctx, sqlitePath(dsn))
		if err != nil {
			return nil, err
		}
		return repository.NewSQLiteTaskRepository(sqlDB), nil
	}
}

// ConnectPostgres opens a pool, pings it and applies the Postgres schema.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	err = migrations.Apply(ctx, migrations.DialectPostgres, func(ctx context.Context, stmt string) error {
		_, err := pool.Exec(ctx, stmt)
		return err
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("database connected", "driver", "postgres")
	return pool, nil
}

// ConnectSQLite opens a SQLite database at path (":memory:" allowed) with a
// single connection, WAL and a busy timeout, then applies the schema.
func ConnectSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one connection: SQLite has a single writer and :memory: is per-connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			closeQuietly(db)
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	err = migrations.Apply(ctx, migrations.DialectSQLite, func(ctx context.Context, stmt string) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	})
	if err != nil {
		closeQuietly(db)
		return nil, err
	}

	logger.Info("database connected", "driver", "sqlite", "path", path)
	return db, nil
}

// sqlitePath accepts sqlite:<path>, the URL forms sqlite:///relative and
// sqlite:////absolute, and a bare path. sqlite:// alone is in-memory.
func sqlitePath(dsn string) string {
	var path string
	switch {
	case strings.HasPrefix(dsn, "sqlite:///"):
		path = strings.TrimPrefix(dsn, "sqlite:///")
	case strings.HasPrefix(dsn, "sqlite://"):
		path = strings.TrimPrefix(dsn, "sqlite://")
	default:
		path = strings.TrimPrefix(dsn, "sqlite:")
	}
	if path == "" {
		return ":memory:"
	}
	return path
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Error("error closing db", "error", err)
	}
}
