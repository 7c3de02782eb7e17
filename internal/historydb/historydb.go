// Package historydb persists a one-row-per-folder-per-invocation ledger of
// past sync activity, surfaced by `rsinc status`. Grounded on the teacher's
// internal/sync/state.go (embedded-migration SQLite store opened with WAL
// pragmas) and migrations.go (goose v3 provider), repurposed from OneDrive
// delta/session bookkeeping to a single run_history table. A failure here is
// never fatal to a sync: per spec.md §7 nothing about the base or the
// reconciliation result depends on this store.
package historydb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure Go SQLite driver, registers as "sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// walJournalSizeLimit bounds the WAL file the same way the teacher's store
// does, since this database sees the same long-lived-process access pattern.
const walJournalSizeLimit = 67108864 // 64 MiB

// Store is a run-history ledger backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the database at path, applies pending
// migrations, and returns a ready Store. Use ":memory:" for tests.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("historydb: open %s: %w", path, err)
	}

	if err := setPragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

func setPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA journal_size_limit = %d", walJournalSizeLimit),
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("historydb: %s: %w", p, err)
		}
	}

	return nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("historydb: migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("historydb: migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("historydb: running migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
