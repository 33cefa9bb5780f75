package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one schema file, applied in name order.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the embedded schema files sorted by name.
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		content, err := migrationFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		migrations = append(migrations, Migration{Name: name, SQL: string(content)})
	}
	return migrations, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunMigrations applies every migration in order. The files are idempotent.
func RunMigrations(ctx context.Context, conn execer, onApplied func(name string)) error {
	migrations, err := Migrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if _, err := conn.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("failed to execute %s: %w", m.Name, err)
		}
		if onApplied != nil {
			onApplied(m.Name)
		}
	}
	return nil
}
