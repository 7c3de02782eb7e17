package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Nudge a running sync --watch into an immediate re-sync",
		Long: `Sends SIGHUP to the watcher whose PID is recorded at the configured watch
lock file. Useful after editing a .rignore file, which fsnotify never
reports as a change worth re-syncing over.`,
		RunE: runReload,
	}
}

func runReload(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	if err := sendSIGHUP(cc.Cfg.PIDFilePath()); err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "reload signal sent")

	return nil
}
