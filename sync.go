package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwilliams/rsinc/internal/agent"
	"github.com/cwilliams/rsinc/internal/cliout"
	"github.com/cwilliams/rsinc/internal/driver"
	"github.com/cwilliams/rsinc/internal/historydb"
)

func newSyncCmd() *cobra.Command {
	var flagDryRun, flagDefault, flagRecover, flagAuto, flagWatch, flagClean, flagPurge, flagRefreshIgnores bool

	cmd := &cobra.Command{
		Use:   "sync [folders...]",
		Short: "Synchronize the local and remote trees",
		Long: `Run one reconciliation pass per folder argument (or, with none given, the
folder implied by the current working directory, or -D's configured default
set). Each folder is diffed against the persisted base, reconciled, and (unless
-d) applied through the configured agent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), args, syncFlags{
				dryRun:         flagDryRun,
				useDefault:     flagDefault,
				recover:        flagRecover,
				auto:           flagAuto,
				watch:          flagWatch,
				clean:          flagClean,
				purge:          flagPurge,
				refreshIgnores: flagRefreshIgnores,
			})
		},
	}

	cmd.Flags().BoolVarP(&flagDryRun, "dry", "d", false, "plan only, never execute")
	cmd.Flags().BoolVarP(&flagDefault, "default", "D", false, "sync the configured default folder set")
	cmd.Flags().BoolVarP(&flagRecover, "recovery", "r", false, "force recovery mode on every folder")
	cmd.Flags().BoolVarP(&flagAuto, "auto", "a", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&flagWatch, "watch", false, "keep running, re-syncing on local filesystem changes")
	cmd.Flags().BoolVarP(&flagClean, "clean", "c", false, "remove empty directories on both sides after a successful run")
	cmd.Flags().BoolVarP(&flagPurge, "purge", "p", false, "discard the persisted base before running, forcing recovery on every folder")
	cmd.Flags().BoolVarP(&flagRefreshIgnores, "refresh-ignores", "i", false, "recompile ignore filters from disk instead of any cached copy")

	return cmd
}

type syncFlags struct {
	dryRun         bool
	useDefault     bool
	recover        bool
	auto           bool
	watch          bool
	clean          bool
	purge          bool
	refreshIgnores bool
}

func runSync(ctx context.Context, folders []string, flags syncFlags) error {
	cc := mustCLIContext(ctx)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}

	ag := agent.New(cc.Cfg.AgentBinary, cc.Cfg.AgentFlags, cc.Logger)

	// history is kept as driver.HistoryRecorder, not *historydb.Store:
	// passing a typed-nil *historydb.Store through the interface parameter
	// below would make d.History a non-nil interface wrapping a nil pointer,
	// and the first Record call would panic dereferencing it.
	var history driver.HistoryRecorder

	store, err := openHistory(ctx, cc)
	if err != nil {
		cc.Logger.Warn("run history unavailable, continuing without it", "error", err)
	} else {
		defer store.Close()
		history = store
	}

	reporter := cliout.New(os.Stdout, os.Stdin)

	d := driver.New(cc.Cfg, ag, cc.Logger, reporter, history)

	opts := driver.Options{
		Folders:        folders,
		Default:        flags.useDefault,
		Cwd:            cwd,
		DryRun:         flags.dryRun,
		Auto:           flags.auto,
		ForceRecover:   flags.recover,
		Purge:          flags.purge,
		Clean:          flags.clean,
		RefreshIgnores: flags.refreshIgnores,
	}

	if flags.watch {
		cleanup, err := writePIDFile(cc.Cfg.PIDFilePath())
		if err != nil {
			return fmt.Errorf("acquiring watch lock: %w", err)
		}
		defer cleanup()

		return d.Watch(ctx, opts)
	}

	return d.Run(ctx, opts)
}

// openHistory opens the run-history ledger. A nil, non-error return from
// this function is impossible by construction; callers should still treat a
// non-nil error as non-fatal, per SPEC_FULL.md §10 — the ledger is an
// observability side channel, never load-bearing for the sync itself.
func openHistory(ctx context.Context, cc *CLIContext) (*historydb.Store, error) {
	path := cc.Cfg.HistoryDBPath()
	if path == "" {
		return nil, fmt.Errorf("cannot determine history database path (MASTER not configured)")
	}

	return historydb.Open(ctx, path, cc.Logger)
}
