// Package migrations embeds the schema files for each supported database.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// ExecFunc runs one migration file.
type ExecFunc func(ctx context.Context, sql string) error

// Migration is a single schema file.
type Migration struct {
	Name string
	SQL  string
}

// List returns the migrations for dialect in file name order.
func List(dialect string) ([]Migration, error) {
	entries, err := fs.ReadDir(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("unknown dialect %q: %w", dialect, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	res := make([]Migration, 0, len(names))
	for _, name := range names {
		b, err := files.ReadFile(path.Join(dialect, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		res = append(res, Migration{Name: name, SQL: string(b)})
	}
	return res, nil
}

// Apply runs every migration for dialect. Files are idempotent.
func Apply(ctx context.Context, dialect string, exec ExecFunc) error {
	migs, err := List(dialect)
	if err != nil {
		return err
	}
	for _, m := range migs {
		if err := exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}
