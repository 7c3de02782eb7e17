// Package driver orchestrates the per-folder sync loop spec.md §4.7
// describes: resolve which folders to sync, load the base, snapshot both
// sides, plan a dry pass, confirm, plan a live pass, and persist the new
// base. Ported from sinc.py's top-level script, split here into named,
// testable operations instead of one top-to-bottom script with module
// globals.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cwilliams/rsinc/internal/agent"
	"github.com/cwilliams/rsinc/internal/basetree"
	"github.com/cwilliams/rsinc/internal/config"
	"github.com/cwilliams/rsinc/internal/reconcile"
)

// Options controls one driver invocation, mirroring the CLI flags spec.md
// §6 lists.
type Options struct {
	Folders        []string // positional folder arguments
	Default        bool     // -D: sync DefaultDirs instead
	Cwd            string   // process working directory, used when Folders and Default are both empty
	DryRun         bool     // -d: never run the live pass
	Auto           bool     // -a: skip the confirmation prompt
	ForceRecover   bool     // -r: force recovery mode on every folder
	RefreshIgnores bool     // -i: reserved; ignore filters are always recompiled per run currently
	Purge          bool     // -p: discard the persisted base before running, forcing full recovery
	Clean          bool     // -c: remove empty directories on both sides after a successful live pass
}

// Reporter renders a pass's action list for a human and asks for
// confirmation before a live pass runs. A nil Reporter means Run renders
// nothing and proceeds as if confirmed — used by tests. `rsinc verify`
// passes a Reporter but forces DryRun, so it never reaches the
// confirmation step.
type Reporter interface {
	ReportPass(folder string, dryRun bool, actions []reconcile.Action)
	Confirm(folder string, count int) (bool, error)
}

// HistoryRecorder persists one invocation's outcome for `rsinc status`. Nil
// is valid: per SPEC_FULL.md §10 the history ledger is an observability
// side channel, never load-bearing for the sync itself.
type HistoryRecorder interface {
	Record(ctx context.Context, entry HistoryEntry)
}

// HistoryEntry is one folder's outcome for one invocation.
type HistoryEntry struct {
	Folder   string
	Recover  bool
	DryRun   bool
	Actions  int
	Duration time.Duration
	Err      error
}

// Driver runs the per-folder sync loop against one configuration.
type Driver struct {
	Cfg      *config.Config
	Agent    agent.Agent
	Logger   *slog.Logger
	Reporter Reporter
	History  HistoryRecorder
}

// New returns a Driver. logger, reporter, and history may all be nil.
func New(cfg *config.Config, ag agent.Agent, logger *slog.Logger, reporter Reporter, history HistoryRecorder) *Driver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Driver{Cfg: cfg, Agent: ag, Logger: logger, Reporter: reporter, History: history}
}

// Run resolves the folder list, loads the base, and syncs each folder in
// turn, persisting the base after each one so a crash partway through a
// multi-folder invocation only loses progress on the folder in flight. A
// crash marker left by a previous run is promoted to the front of the list
// and forced into recovery mode (spec.md §4.7).
func (d *Driver) Run(ctx context.Context, opts Options) error {
	folders := ResolveFolders(d.Cfg.BaseL, d.Cfg.DefaultDirs, opts.Folders, opts.Default, opts.Cwd)

	if opts.Purge {
		if err := purgeBase(d.Cfg.Master); err != nil {
			return fmt.Errorf("purging base: %w", err)
		}

		d.Logger.Warn("base purged, every folder this run starts from recovery", "path", d.Cfg.Master)
	}

	marker, hasMarker, err := ReadMarker(d.Cfg.TempFile)
	if err != nil {
		return err
	}

	forcedRecover := make(map[string]bool)
	if hasMarker {
		d.Logger.Warn("crash marker present, forcing recovery", "folder", marker.Folder, "run_id", marker.RunID)
		folders = promoteToFront(folders, marker.Folder)
		forcedRecover[marker.Folder] = true
	}

	doc, ok, err := basetree.Load(d.Cfg.Master)
	if err != nil {
		return fmt.Errorf("loading base: %w", err)
	}

	if !ok {
		d.Logger.Warn("base file missing or unreadable, starting from an empty base", "path", d.Cfg.Master)
	}

	var errs []error

	for _, folder := range folders {
		recover := opts.ForceRecover || forcedRecover[folder] || !doc.Tree.Contains(folder)

		start := time.Now()
		actions, err := d.runFolder(ctx, doc, folder, recover, opts)
		entry := HistoryEntry{
			Folder:   folder,
			Recover:  recover,
			DryRun:   opts.DryRun,
			Actions:  actions,
			Duration: time.Since(start),
			Err:      err,
		}

		if d.History != nil {
			d.History.Record(ctx, entry)
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("folder %s: %w", folder, err))
			d.Logger.Error("sync failed, any crash marker already written is left in place for next run", "folder", folder, "error", err)

			continue
		}

		if opts.Clean && !opts.DryRun {
			if err := d.cleanFolder(ctx, folder); err != nil {
				errs = append(errs, fmt.Errorf("cleaning %s: %w", folder, err))
				d.Logger.Error("clean pass failed", "folder", folder, "error", err)
			}
		}
	}

	return errors.Join(errs...)
}

// cleanFolder removes empty directories left behind on both sides after a
// live pass. Run only with -c, and only outside the core reconciliation
// logic: it never touches a directory that still holds files, so it cannot
// race with or undo anything runFolder just did.
func (d *Driver) cleanFolder(ctx context.Context, folder string) error {
	lclRoot := joinRoot(d.Cfg.BaseL, folder)
	rmtRoot := joinRoot(d.Cfg.BaseR, folder)

	if err := d.Agent.Rmdirs(ctx, lclRoot); err != nil {
		return fmt.Errorf("local: %w", err)
	}

	if err := d.Agent.Rmdirs(ctx, rmtRoot); err != nil {
		return fmt.Errorf("remote: %w", err)
	}

	return nil
}

// purgeBase removes the persisted base file so the next Run treats every
// folder as unknown and forces recovery. A missing file is not an error:
// purging an already-empty base is a no-op.
func purgeBase(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
