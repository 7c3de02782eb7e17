package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwilliams/rsinc/internal/agent"
	"github.com/cwilliams/rsinc/internal/cliout"
	"github.com/cwilliams/rsinc/internal/driver"
	"github.com/cwilliams/rsinc/internal/reconcile"
)

// errVerifyMismatch is returned when verify finds at least one pending
// action, signalling main() to exit 1 without printing a generic error.
var errVerifyMismatch = errors.New("local and remote trees are not in sync")

func newVerifyCmd() *cobra.Command {
	var flagDefault bool

	cmd := &cobra.Command{
		Use:   "verify [folders...]",
		Short: "Check whether the local and remote trees are in sync",
		Long: `Run a dry pass over each folder (same folder-resolution rules as sync) and
report whether any action would be needed. Never touches either side or the
persisted base. Exits nonzero if any folder is out of sync.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), args, flagDefault)
		},
	}

	cmd.Flags().BoolVarP(&flagDefault, "default", "D", false, "check the configured default folder set")

	return cmd
}

func runVerify(ctx context.Context, folders []string, useDefault bool) error {
	cc := mustCLIContext(ctx)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}

	ag := agent.New(cc.Cfg.AgentBinary, cc.Cfg.AgentFlags, cc.Logger)
	reporter := &verifyReporter{inner: cliout.New(os.Stdout, os.Stdin)}

	d := driver.New(cc.Cfg, ag, cc.Logger, reporter, nil)

	opts := driver.Options{
		Folders: folders,
		Default: useDefault,
		Cwd:     cwd,
		DryRun:  true,
	}

	if err := d.Run(ctx, opts); err != nil {
		return err
	}

	if reporter.total > 0 {
		return errVerifyMismatch
	}

	fmt.Fprintln(os.Stdout, "in sync")

	return nil
}

// verifyReporter delegates rendering to cliout.Reporter and additionally
// tallies a running total across every folder, since a single invocation of
// verify can cover several folders and the exit code reflects all of them.
type verifyReporter struct {
	inner *cliout.Reporter
	total int
}

func (r *verifyReporter) ReportPass(folder string, dryRun bool, actions []reconcile.Action) {
	r.total += len(actions)
	r.inner.ReportPass(folder, dryRun, actions)
}

// Confirm is never called: DryRun is always true for verify, so the driver
// never reaches the confirmation step.
func (r *verifyReporter) Confirm(folder string, count int) (bool, error) {
	return false, nil
}
