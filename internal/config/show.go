package config

import (
	"fmt"
	"io"
	"strings"
)

// RenderEffective writes cfg as a human-readable annotated summary to w.
// This powers the "config show" command, giving users visibility into the
// effective values after the override chain (defaults -> file -> env -> CLI)
// has been applied.
func RenderEffective(cfg *Config, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration\n\n")
	ew.printf("BASE_L            = %q\n", cfg.BaseL)
	ew.printf("BASE_R            = %q\n", cfg.BaseR)
	ew.printf("CASE_INSENSATIVE  = %t\n", cfg.CaseInsensitive)
	ew.printf("HASH_NAME         = %q\n", cfg.HashName)
	ew.printf("DEFAULT_DIRS      = [%s]\n", joinQuoted(cfg.DefaultDirs))
	ew.printf("LOG_FOLDER        = %q\n", cfg.LogFolder)
	ew.printf("MASTER            = %q\n", cfg.Master)
	ew.printf("TEMP_FILE         = %q\n", cfg.TempFile)
	ew.printf("FAST_SAVE         = %t\n", cfg.FastSave)
	ew.printf("\n")
	ew.printf("AGENT_BINARY      = %q\n", cfg.AgentBinary)
	ew.printf("AGENT_FLAGS       = [%s]\n", joinQuoted(cfg.AgentFlags))
	ew.printf("WORKERS           = %d\n", cfg.Workers)
	ew.printf("history db        = %q\n", cfg.HistoryDBPath())

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain
// printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// joinQuoted formats a string slice as comma-separated quoted values.
func joinQuoted(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}

	return strings.Join(quoted, ", ")
}
