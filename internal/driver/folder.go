package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cwilliams/rsinc/internal/basetree"
	"github.com/cwilliams/rsinc/internal/diffstate"
	"github.com/cwilliams/rsinc/internal/flat"
	"github.com/cwilliams/rsinc/internal/ignore"
	"github.com/cwilliams/rsinc/internal/jobexec"
	"github.com/cwilliams/rsinc/internal/reconcile"
)

// runFolder syncs one folder: snapshot both sides, plan a dry pass, confirm
// if required, plan a live pass, and persist the resulting base. Returns
// the action count the run found (dry count if opts.DryRun, live count
// otherwise).
func (d *Driver) runFolder(ctx context.Context, doc *basetree.Document, folder string, recover bool, opts Options) (int, error) {
	lclRoot := joinRoot(d.Cfg.BaseL, folder)
	rmtRoot := joinRoot(d.Cfg.BaseR, folder)

	lclFilter, err := ignore.CompileLocal(lclRoot)
	if err != nil {
		return 0, fmt.Errorf("compiling local ignore filter: %w", err)
	}

	rmtFilter, err := ignore.CompileRemote(ctx, d.Agent, rmtRoot)
	if err != nil {
		return 0, fmt.Errorf("compiling remote ignore filter: %w", err)
	}

	lcl, err := flat.Build(ctx, d.Agent, lclRoot, d.Cfg.HashName, lclFilter, d.Logger)
	if err != nil {
		return 0, fmt.Errorf("snapshotting %s: %w", lclRoot, err)
	}

	rmt, err := flat.Build(ctx, d.Agent, rmtRoot, d.Cfg.HashName, rmtFilter, d.Logger)
	if err != nil {
		return 0, fmt.Errorf("snapshotting %s: %w", rmtRoot, err)
	}

	var old *flat.Flat
	if !recover {
		if branch, ok := doc.Tree.GetBranch(folder); ok {
			old = basetree.Unpack(branch, folder)
		}
	}

	// Plan dispatches on each entry's State/Moved/IsClone fields but never
	// sets them itself; the caller classifies both snapshots against old
	// before planning. Recovery mode (old == nil) skips this: matchStatesRecover
	// only reads Fingerprint/ModTime/Synced.
	if old != nil {
		diffstate.CalcStates(old, lcl)
		diffstate.CalcStates(old, rmt)
	}

	dryPool := jobexec.New(d.Cfg.Workers)
	dryPlanner := reconcile.NewPlanner(d.Agent, dryPool, lclRoot, rmtRoot, d.Cfg.CaseInsensitive, true, d.Logger)

	count, _, err := dryPlanner.Plan(ctx, lcl, rmt, old)
	if err != nil {
		return count, fmt.Errorf("dry pass: %w", err)
	}

	if d.Reporter != nil {
		d.Reporter.ReportPass(folder, true, dryPlanner.Actions)
	}

	if opts.DryRun {
		return count, nil
	}

	if count == 0 {
		d.Logger.Info("nothing to sync", "folder", folder)

		// Both sides already agree; in recovery mode, record them as the base
		// so the next run is not a recovery run again.
		if recover {
			if err := d.persistBase(ctx, doc, folder, lclRoot, lclFilter, dryPlanner); err != nil {
				return 0, fmt.Errorf("persisting base: %w", err)
			}
		}

		return 0, nil
	}

	if !opts.Auto {
		proceed := true

		if d.Reporter != nil {
			proceed, err = d.Reporter.Confirm(folder, count)
			if err != nil {
				return count, fmt.Errorf("confirmation: %w", err)
			}
		}

		if !proceed {
			d.Logger.Info("sync skipped by user", "folder", folder)
			return count, nil
		}
	}

	if err := WriteMarker(d.Cfg.TempFile, folder); err != nil {
		return count, fmt.Errorf("writing crash marker: %w", err)
	}

	livePool := jobexec.New(d.Cfg.Workers)
	livePlanner := reconcile.NewPlanner(d.Agent, livePool, lclRoot, rmtRoot, d.Cfg.CaseInsensitive, false, d.Logger)

	liveCount, _, err := livePlanner.Plan(ctx, lcl, rmt, old)
	if err != nil {
		return liveCount, fmt.Errorf("live pass: %w", err)
	}

	if d.Reporter != nil {
		d.Reporter.ReportPass(folder, false, livePlanner.Actions)
	}

	if err := d.persistBase(ctx, doc, folder, lclRoot, lclFilter, livePlanner); err != nil {
		return liveCount, fmt.Errorf("persisting base: %w", err)
	}

	if err := RemoveMarker(d.Cfg.TempFile); err != nil {
		return liveCount, fmt.Errorf("removing crash marker: %w", err)
	}

	return liveCount, nil
}

// persistBase merges the post-sync state of folder into doc and writes it
// to Master. Per spec.md §4.5, the merge happens at GetMin(folder) — the
// longest ancestor of folder the base already tracks — not at folder
// itself, so a narrow sync doesn't orphan a wider subtree a previous run
// already covered. When the merge scope widens beyond folder, that wider
// scope is re-listed fresh, since the live-pass snapshot only covers
// folder; FAST_SAVE (reuse the in-memory snapshot instead of re-listing)
// only applies when the merge scope is exactly folder.
func (d *Driver) persistBase(ctx context.Context, doc *basetree.Document, folder, lclRoot string, lclFilter *ignore.Filter, livePlanner *reconcile.Planner) error {
	minPath := doc.Tree.GetMin(folder)
	if minPath == "" {
		minPath = folder
	}

	packFlat := livePlanner.LclSnapshot()
	packRoot := folder

	if minPath != folder || !d.Cfg.FastSave {
		root, filter := lclRoot, lclFilter

		if minPath != folder {
			root = joinRoot(d.Cfg.BaseL, minPath)

			var err error
			filter, err = ignore.CompileLocal(root)
			if err != nil {
				return fmt.Errorf("compiling local ignore filter for %s: %w", root, err)
			}
		}

		fresh, err := flat.Build(ctx, d.Agent, root, d.Cfg.HashName, filter, d.Logger)
		if err != nil {
			return fmt.Errorf("re-listing %s: %w", root, err)
		}

		packFlat = fresh
		packRoot = minPath
	}

	doc.Tree.Merge(packRoot, basetree.Pack(packFlat))
	doc.History = mergeSorted(doc.History, joinRoot(d.Cfg.BaseL, folder))

	ignoreFiles, err := discoverLocalIgnoreFiles(lclRoot)
	if err != nil {
		return fmt.Errorf("listing local ignore files: %w", err)
	}

	for _, path := range ignoreFiles {
		doc.Ignores = mergeSorted(doc.Ignores, path)
	}

	return basetree.Save(d.Cfg.Master, doc)
}

// discoverLocalIgnoreFiles returns the absolute paths of every .rignore
// file under root, recorded in the base's "ignores" array (spec.md §6) so
// an operator inspecting the base file can see which ignore files shaped
// it.
func discoverLocalIgnoreFiles(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && d.Name() == ".rignore" {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}

			paths = append(paths, abs)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// mergeSorted inserts value into a sorted, deduplicated copy of items.
func mergeSorted(items []string, value string) []string {
	for _, item := range items {
		if item == value {
			return items
		}
	}

	out := append(append([]string(nil), items...), value)
	sort.Strings(out)

	return out
}
