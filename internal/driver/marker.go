package driver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// markerPermissions/markerDirPermissions match the base store's atomic-write
// conventions (internal/basetree/store.go) — the marker is as small and as
// crash-safety-critical as the base file itself.
const (
	markerPermissions    = 0o644
	markerDirPermissions = 0o755
)

// Marker is the crash-recovery record spec.md §6 names: presence signals
// that Folder was mid-sync when the process last exited. RunID is a
// domain-stack addition: a fresh token stamped on every WriteMarker call so
// a log line reading the marker back can tell "still the run that wrote
// this" apart from "a stale marker from some earlier, already-handled
// crash" when correlating against prior log output.
type Marker struct {
	Folder string `json:"folder"`
	RunID  string `json:"run_id"`
}

// ReadMarker reads the marker file at path. ok is false when no marker file
// exists. Unlike the base file, a marker that exists but fails to parse is a
// hard error: its presence alone proves a crash happened, so silently
// treating it as absent would skip the recovery it exists to force.
func ReadMarker(path string) (m *Marker, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("reading crash marker %s: %w", path, err)
	}

	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, false, fmt.Errorf("parsing crash marker %s: %w", path, err)
	}

	return &marker, true, nil
}

// WriteMarker records folder as mid-sync. Written before the live pass per
// spec.md §4.7.
func WriteMarker(path, folder string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, markerDirPermissions); err != nil {
		return fmt.Errorf("creating crash marker directory: %w", err)
	}

	data, err := json.Marshal(Marker{Folder: folder, RunID: uuid.NewString()})
	if err != nil {
		return fmt.Errorf("encoding crash marker: %w", err)
	}

	if err := os.WriteFile(path, data, markerPermissions); err != nil {
		return fmt.Errorf("writing crash marker %s: %w", path, err)
	}

	return nil
}

// RemoveMarker deletes the marker file, called after the base is persisted
// successfully. A missing marker is not an error.
func RemoveMarker(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing crash marker %s: %w", path, err)
	}

	return nil
}

// promoteToFront moves folder to the front of folders, inserting it if
// absent, mirroring spec.md §4.7's "that folder is promoted to the front
// of the work list".
func promoteToFront(folders []string, folder string) []string {
	out := make([]string, 0, len(folders)+1)
	out = append(out, folder)

	for _, f := range folders {
		if f != folder {
			out = append(out, f)
		}
	}

	return out
}
