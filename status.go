package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwilliams/rsinc/internal/historydb"
)

func newStatusCmd() *cobra.Command {
	var flagLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent sync runs",
		Long:  `List the most recent entries from the run-history ledger, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, flagLimit)
		},
	}

	cmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "number of runs to show")

	return cmd
}

func runStatus(cmd *cobra.Command, limit int) error {
	cc := mustCLIContext(cmd.Context())

	path := cc.Cfg.HistoryDBPath()
	if path == "" {
		return fmt.Errorf("cannot determine history database path (MASTER not configured)")
	}

	store, err := historydb.Open(cmd.Context(), path, cc.Logger)
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("reading run history: %w", err)
	}

	if cc.Flags.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(runs)
	}

	printStatusTable(runs)

	return nil
}

func printStatusTable(runs []historydb.Run) {
	if len(runs) == 0 {
		statusf("No runs recorded yet.\n")
		return
	}

	headers := []string{"STARTED", "FOLDER", "MODE", "ACTIONS", "DURATION", "ERROR"}
	rows := make([][]string, len(runs))

	for i, r := range runs {
		mode := "live"
		if r.DryRun {
			mode = "dry"
		}
		if r.Recover {
			mode += "+recover"
		}

		errStr := r.Error
		if errStr == "" {
			errStr = "-"
		}

		rows[i] = []string{
			formatTime(r.StartedAt),
			r.Folder,
			mode,
			fmt.Sprintf("%d", r.Actions),
			r.Duration.String(),
			errStr,
		}
	}

	printTable(os.Stdout, headers, rows)
}
