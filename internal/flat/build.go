package flat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/cwilliams/rsinc/internal/agent"
	"github.com/cwilliams/rsinc/internal/ignore"
)

// Build enumerates a tree rooted at path through ag, joins in hashes, and
// returns a snapshot containing one entry per non-ignored file. Files
// reported by List but missing from the Hashsum map are skipped with a
// warning, per spec.md §4.2.
func Build(ctx context.Context, ag agent.Agent, path, hashName string, filter *ignore.Filter, logger *slog.Logger) (*Flat, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := ag.Mkdir(ctx, path); err != nil {
		return nil, fmt.Errorf("ensuring %s exists: %w", path, err)
	}

	entries, err := ag.List(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	hashes, err := ag.Hashsum(ctx, hashName, path)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}

	snap := New(path)

	for _, le := range entries {
		if filter != nil && filter.Match(joinRel(path, le.RelPath)) {
			continue
		}

		hash, ok := hashes[le.RelPath]
		if !ok {
			logger.Warn("file has no hash, skipping", "path", le.RelPath, "root", path)
			continue
		}

		// Normalize to NFC before indexing: a name round-tripped through a
		// remote backend can come back under a different Unicode
		// normalization form than the local filesystem reports it under
		// (e.g. HFS+ decomposes accented characters to NFD), which would
		// otherwise register as two different names — a spurious
		// create-on-one-side/delete-on-the-other pair.
		snap.Update(&Entry{
			Name:        norm.NFC.String(le.RelPath),
			Fingerprint: strconv.FormatInt(le.Size, 10) + hash,
			ModTime:     le.ModTime.Unix(),
			State:       SAME,
		})
	}

	return snap, nil
}

func joinRel(root, rel string) string {
	if root == "" {
		return rel
	}

	return root + "/" + rel
}
