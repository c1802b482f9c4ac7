package db

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"hash/fnv"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/runway/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var migrateLog = logging.Component("db")

type direction string

const (
	dirUp   direction = "up"
	dirDown direction = "down"
)

// Migration is one schema version with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Checksum fingerprints the up SQL. It is stored when the migration is
// applied so later edits to an applied file can be spotted.
func (m Migration) Checksum() string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(m.UpSQL))
	return strconv.FormatUint(h.Sum64(), 16)
}

// migrationFile is the parsed form of "NNNN_name.{up,down}.sql".
type migrationFile struct {
	version int
	name    string
	dir     direction
}

func parseFilename(filename string) (migrationFile, error) {
	var f migrationFile

	base, ok := strings.CutSuffix(filename, ".sql")
	if !ok {
		return f, fmt.Errorf("expected .sql suffix, got %q", filename)
	}
	switch {
	case strings.HasSuffix(base, "."+string(dirUp)):
		f.dir = dirUp
	case strings.HasSuffix(base, "."+string(dirDown)):
		f.dir = dirDown
	default:
		return f, fmt.Errorf("expected .up.sql or .down.sql suffix, got %q", filename)
	}
	base = strings.TrimSuffix(base, "."+string(f.dir))

	num, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return f, fmt.Errorf("expected format NNNN_name.{up,down}.sql")
	}

	version, err := strconv.Atoi(num)
	if err != nil {
		return f, fmt.Errorf("version %q is not a valid integer: %w", num, err)
	}
	if version <= 0 {
		return f, fmt.Errorf("version must be positive, got %d", version)
	}

	f.version = version
	f.name = name
	return f, nil
}

// loadMigrations reads every migration in dir of fsys, sorted by version.
// Each version needs exactly one up and one down file.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		f, err := parseFilename(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", entry.Name(), err)
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[f.version]
		if !ok {
			m = &Migration{Version: f.version, Name: f.name}
			byVersion[f.version] = m
		}

		target := &m.UpSQL
		if f.dir == dirDown {
			target = &m.DownSQL
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %04d", f.dir, f.version)
		}
		*target = string(content)
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		switch {
		case m.UpSQL == "":
			return nil, fmt.Errorf("migration %04d has down file but no up file", m.Version)
		case m.DownSQL == "":
			return nil, fmt.Errorf("migration %04d has up file but no down file", m.Version)
		}
		migrations = append(migrations, *m)
	}

	slices.SortFunc(migrations, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return migrations, nil
}

func embeddedMigrations() ([]Migration, error) {
	return loadMigrations(migrationsFS, "migrations")
}

// migrateUp applies every pending migration in version order. Applied
// migrations whose SQL has changed since are logged and left alone.
func migrateUp(ctx context.Context, conn *sql.DB) error {
	migrations, err := embeddedMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := prepare(ctx, conn)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if sum, ok := applied[m.Version]; ok {
			if sum != "" && sum != m.Checksum() {
				migrateLog.Warn().Int("version", m.Version).Str("name", m.Name).Msg("applied migration was modified")
			}
			continue
		}

		migrateLog.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		if err := step(ctx, conn, m, dirUp); err != nil {
			return fmt.Errorf("migration %04d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// MigrateDown reverts the last n applied migrations, newest first.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	if n <= 0 {
		return fmt.Errorf("n must be positive, got %d", n)
	}

	migrations, err := embeddedMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := prepare(ctx, conn)
	if err != nil {
		return err
	}

	var toRevert []Migration
	for _, m := range slices.Backward(migrations) {
		if _, ok := applied[m.Version]; ok {
			toRevert = append(toRevert, m)
		}
	}

	if n > len(toRevert) {
		return fmt.Errorf("requested %d down migrations but only %d are applied", n, len(toRevert))
	}

	for _, m := range toRevert[:n] {
		migrateLog.Info().Int("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		if err := step(ctx, conn, m, dirDown); err != nil {
			return fmt.Errorf("revert migration %04d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// prepare creates the schema_migrations table if needed and returns the
// applied versions mapped to their recorded checksums.
func prepare(ctx context.Context, conn *sql.DB) (map[int]string, error) {
	_, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			checksum   TEXT NOT NULL DEFAULT '',
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("creating schema_migrations table: %w", err)
	}
	return appliedVersions(ctx, conn)
}

func appliedVersions(ctx context.Context, conn *sql.DB) (map[int]string, error) {
	rows, err := conn.QueryContext(ctx, "SELECT version, checksum FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("querying applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]string)
	for rows.Next() {
		var (
			v   int
			sum string
		)
		if err := rows.Scan(&v, &sum); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		applied[v] = sum
	}
	return applied, rows.Err()
}

// step runs one migration in dir and updates schema_migrations in the same
// transaction.
func step(ctx context.Context, conn *sql.DB, m Migration, dir direction) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	script, record, args := m.UpSQL,
		"INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES (?, ?, ?, ?)",
		[]any{m.Version, m.Name, m.Checksum(), time.Now().UnixNano()}
	if dir == dirDown {
		script, record, args = m.DownSQL, "DELETE FROM schema_migrations WHERE version = ?", []any{m.Version}
	}

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}
