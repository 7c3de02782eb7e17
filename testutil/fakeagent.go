// Package testutil provides an in-memory Agent implementation so
// reconciliation, driver, and snapshot-builder tests never shell out to a
// real rclone binary. Grounded on the teacher's TestEnv convention of
// hiding I/O behind a fake for deterministic tests.
package testutil

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cwilliams/rsinc/internal/agent"
	"github.com/cwilliams/rsinc/pkg/quickxorhash"
)

// FakeAgent is an in-memory tree keyed by full path ("root/relpath"). It
// implements agent.Agent so reconcile/driver tests can drive both "sides"
// of a sync with plain Go values instead of subprocesses.
type FakeAgent struct {
	mu    sync.Mutex
	files map[string]*fakeFile
}

type fakeFile struct {
	content []byte
	modTime time.Time
}

// NewFakeAgent returns an empty fake tree.
func NewFakeAgent() *FakeAgent {
	return &FakeAgent{files: make(map[string]*fakeFile)}
}

// Put seeds fullPath with content and modTime, creating or overwriting it.
// Test setup helper, not part of the Agent interface.
func (a *FakeAgent) Put(fullPath string, content []byte, modTime time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.files[fullPath] = &fakeFile{content: content, modTime: modTime}
}

// Contents returns the stored bytes for fullPath, for test assertions.
func (a *FakeAgent) Contents(fullPath string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := a.files[fullPath]
	if !ok {
		return nil, false
	}

	return f.content, true
}

// Exists reports whether fullPath is present.
func (a *FakeAgent) Exists(fullPath string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.files[fullPath]

	return ok
}

var _ agent.Agent = (*FakeAgent)(nil)

// List enumerates every file whose key has root as a path prefix,
// returning paths relative to root.
func (a *FakeAgent) List(_ context.Context, root string) ([]agent.ListEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prefix := root + "/"

	var out []agent.ListEntry
	for full, f := range a.files {
		if !strings.HasPrefix(full, prefix) {
			continue
		}

		rel := strings.TrimPrefix(full, prefix)
		out = append(out, agent.ListEntry{
			RelPath: rel,
			Size:    int64(len(f.content)),
			ModTime: f.modTime,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })

	return out, nil
}

// Hashsum computes a deterministic digest of every file under root using
// quickxorhash, regardless of the requested algorithm name (the fake has
// no notion of distinct hash functions; only determinism matters to the
// reconciliation tests).
func (a *FakeAgent) Hashsum(_ context.Context, _ string, root string) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prefix := root + "/"
	sums := make(map[string]string)

	for full, f := range a.files {
		if !strings.HasPrefix(full, prefix) {
			continue
		}

		h := quickxorhash.New()
		h.Write(f.content)
		rel := strings.TrimPrefix(full, prefix)
		sums[rel] = fmt.Sprintf("%x", h.Sum(nil))
	}

	return sums, nil
}

// CopyTo duplicates src's content and modtime to dst.
func (a *FakeAgent) CopyTo(_ context.Context, src, dst string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := a.files[src]
	if !ok {
		return fmt.Errorf("copyto: source %s not found", src)
	}

	a.files[dst] = &fakeFile{content: append([]byte(nil), f.content...), modTime: f.modTime}

	return nil
}

// MoveTo relocates src to dst.
func (a *FakeAgent) MoveTo(_ context.Context, src, dst string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := a.files[src]
	if !ok {
		return fmt.Errorf("moveto: source %s not found", src)
	}

	a.files[dst] = f
	delete(a.files, src)

	return nil
}

// Delete removes fullPath.
func (a *FakeAgent) Delete(_ context.Context, fullPath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.files, fullPath)

	return nil
}

// Mkdir is a no-op; the fake has no directory entries of its own, only
// files whose paths imply directories.
func (a *FakeAgent) Mkdir(_ context.Context, _ string) error {
	return nil
}

// ReadFile returns the stored content for fullPath.
func (a *FakeAgent) ReadFile(_ context.Context, fullPath string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := a.files[fullPath]
	if !ok {
		return nil, fmt.Errorf("readfile: %s not found", fullPath)
	}

	return f.content, nil
}

// Rmdirs is a no-op for the same reason as Mkdir: the fake has no directory
// entries to prune, only files.
func (a *FakeAgent) Rmdirs(_ context.Context, _ string) error {
	return nil
}

// JoinPath joins root and rel the way the driver joins BASE_L/BASE_R with a
// folder: no "/" is added after a root ending in "/" or ":" (a bare remote
// name like "rmt:"), so test setup code builds the same fullPath keys that
// the driver, List and Hashsum use.
func JoinPath(root, rel string) string {
	if strings.HasSuffix(root, "/") || strings.HasSuffix(root, ":") {
		return root + rel
	}

	return path.Join(root, rel)
}
