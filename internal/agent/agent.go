// Package agent adapts the reconciliation engine's four file operations
// (list, copy, move, delete, plus directory creation and hashing) onto an
// external command-line tool, by default rclone. The adapter is stateless;
// failures surface as wrapped errors from the underlying exec call, left
// for the job executor to aggregate.
package agent

import (
	"context"
	"time"
)

// ListEntry is one file reported by a List call, before hashes are joined
// in from the separate Hashsum call (not every backend returns hashes
// inline with a directory listing).
type ListEntry struct {
	RelPath string
	Size    int64
	ModTime time.Time
}

// Agent is the contract the reconciliation engine and job executor depend
// on. Every method is context-first so a cancelled driver run stops
// in-flight subprocesses rather than leaking them.
type Agent interface {
	// List enumerates every file under path, recursively, relative to path.
	List(ctx context.Context, path string) ([]ListEntry, error)

	// Hashsum returns relpath -> hex digest for every file under path that
	// the backend can hash with algorithm. Entries absent from the map
	// have no hash and the snapshot builder skips them with a warning.
	Hashsum(ctx context.Context, algorithm, path string) (map[string]string, error)

	// CopyTo copies src to dst, creating any missing destination
	// directories.
	CopyTo(ctx context.Context, src, dst string) error

	// MoveTo renames/moves src to dst.
	MoveTo(ctx context.Context, src, dst string) error

	// Delete removes the file at path.
	Delete(ctx context.Context, path string) error

	// Mkdir ensures path exists as a directory.
	Mkdir(ctx context.Context, path string) error

	// ReadFile returns the contents of the file at path. Used to fetch
	// remote .rignore files discovered through List, since a remote
	// backend has no local filesystem to read lines from directly.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Rmdirs removes every empty directory under path, recursively, leaving
	// files untouched. Used only by the optional post-run --clean pass
	// (spec.md §6 `-c`), never by the reconciliation engine itself, which
	// never deletes a directory that still has files under it.
	Rmdirs(ctx context.Context, path string) error
}
