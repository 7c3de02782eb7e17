package basetree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	basePermissions = 0o644
	baseDirPerms    = 0o755
)

// Load reads and decodes the base document at path. A missing file is not
// an error: it returns an empty document and ok=false, signaling first-run
// (spec.md §7: "Missing base file: first-run, write empty, force
// recovery"). A checksum mismatch is folded into the same ok=false path.
func Load(path string) (doc *Document, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return EmptyDocument(), false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("reading base file: %w", err)
	}

	doc, err = Decode(data)
	if errors.Is(err, ErrChecksumMismatch) {
		return EmptyDocument(), false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("decoding base file %s: %w", path, err)
	}

	return doc, true, nil
}

// Save encodes doc and writes it atomically to path: write to a temp file
// in the same directory, fsync, rename. Mirrors
// internal/config's atomicWriteFile, the pattern this package reuses
// rather than reimplementing.
func Save(path string, doc *Document) error {
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encoding base document: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, baseDirPerms); err != nil {
		return fmt.Errorf("creating base directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".base-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()

		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, basePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}
