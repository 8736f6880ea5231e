package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one schema version with the SQL to apply and revert it.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

var migrationName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// migrationFile is the parsed name of one file in migrations/.
type migrationFile struct {
	version int
	name    string
	up      bool
}

// parseFilename parses "NNNN_name.up.sql" and "NNNN_name.down.sql".
func parseFilename(filename string) (migrationFile, error) {
	m := migrationName.FindStringSubmatch(filename)
	if m == nil {
		return migrationFile{}, fmt.Errorf("%q does not match NNNN_name.{up,down}.sql", filename)
	}
	version, err := strconv.Atoi(m[1])
	if err != nil {
		return migrationFile{}, fmt.Errorf("version of %q: %w", filename, err)
	}
	if version == 0 {
		return migrationFile{}, fmt.Errorf("version of %q must be positive", filename)
	}
	return migrationFile{version: version, name: m[2], up: m[3] == "up"}, nil
}

// loadMigrations reads the embedded files into migrations sorted by
// version. Every version needs exactly one up and one down file.
func loadMigrations() ([]Migration, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, file := range files {
		mf, err := parseFilename(path.Base(file))
		if err != nil {
			return nil, err
		}
		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		m, ok := byVersion[mf.version]
		if !ok {
			m = &Migration{Version: mf.version, Name: mf.name}
			byVersion[mf.version] = m
		}
		dest, direction := &m.DownSQL, "down"
		if mf.up {
			dest, direction = &m.UpSQL, "up"
		}
		if *dest != "" {
			return nil, fmt.Errorf("migration %04d has two %s files", mf.version, direction)
		}
		*dest = string(content)
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration %04d (%s) needs both an up and a down file", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })
	return migrations, nil
}

// schemaState loads the migrations and the set of versions already applied
// to conn.
func schemaState(ctx context.Context, conn *sql.DB) ([]Migration, map[int]bool, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, nil, err
	}

	_, err = conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("read applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, nil, fmt.Errorf("read applied versions: %w", err)
		}
		applied[v] = true
	}
	return migrations, applied, rows.Err()
}

// migrateUp applies every pending migration in version order.
func migrateUp(ctx context.Context, conn *sql.DB) error {
	migrations, applied, err := schemaState(ctx, conn)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		err := step(ctx, conn, m.UpSQL,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("migration %04d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// MigrateDown reverts the newest n applied migrations.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	if n <= 0 {
		return errors.New("number of migrations to revert must be positive")
	}

	migrations, applied, err := schemaState(ctx, conn)
	if err != nil {
		return err
	}

	migrations = slices.DeleteFunc(migrations, func(m Migration) bool { return !applied[m.Version] })
	if n > len(migrations) {
		return fmt.Errorf("cannot revert %d migrations, only %d are applied", n, len(migrations))
	}

	slices.Reverse(migrations)
	for _, m := range migrations[:n] {
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		err := step(ctx, conn, m.DownSQL, "DELETE FROM schema_migrations WHERE version = ?", m.Version)
		if err != nil {
			return fmt.Errorf("revert %04d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// step runs script and the bookkeeping statement in one transaction.
func step(ctx context.Context, conn *sql.DB, script, record string, args ...any) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}
