// Package config loads and validates rsinc's JSON configuration file
// (spec.md §6) and resolves the folder-specific paths derived from it.
package config

import "path/filepath"

// Config mirrors the JSON configuration file keys from spec.md §6.
// Field names keep the JSON keys spec.md names verbatim (BASE_L, BASE_R,
// ...) via struct tags.
type Config struct {
	// BaseL is the local root path to mirror. Always a directory.
	BaseL string `json:"BASE_L"`

	// BaseR is the remote root, as the external agent addresses it. Validate
	// only checks that it contains the remote-name separator ":" (so both
	// "remote:" and "remote:path" pass); a trailing ":" is not enforced.
	BaseR string `json:"BASE_R"`

	// CaseInsensitive enables case-collision checks and lowercase indexing,
	// for backends that cannot hold two names differing only by case.
	CaseInsensitive bool `json:"CASE_INSENSATIVE"`

	// HashName is the hash algorithm name passed to the agent's hashsum
	// operation (e.g. "md5", "sha1", "quickxorhash" — whatever both sides
	// of the agent support).
	HashName string `json:"HASH_NAME"`

	// DefaultDirs is the folder list used when rsinc is invoked with -D.
	DefaultDirs []string `json:"DEFAULT_DIRS"`

	// LogFolder is where run logs are written.
	LogFolder string `json:"LOG_FOLDER"`

	// Master is the path to the persisted base-tree JSON file.
	Master string `json:"MASTER"`

	// TempFile is the path to the crash-recovery marker file.
	TempFile string `json:"TEMP_FILE"`

	// FastSave reuses the in-memory local snapshot as the new base instead of
	// re-listing through the agent after a live pass. Trades fidelity
	// (post-sync agent-side timestamp normalization is not observed) for
	// speed. See SPEC_FULL.md §10 / DESIGN.md Open Question (ii).
	FastSave bool `json:"FAST_SAVE"`

	// Ambient additions not named in spec.md §6 but required to run the
	// agent adapter and job executor — defaulted, never required in the
	// config file.
	AgentBinary string   `json:"AGENT_BINARY"`
	AgentFlags  []string `json:"AGENT_FLAGS"`
	Workers     int      `json:"WORKERS"`
}

// HistoryDBPath returns the path to the run-history ledger database,
// colocated with the master base file.
func (c *Config) HistoryDBPath() string {
	if c.Master == "" {
		return ""
	}

	return filepath.Join(filepath.Dir(c.Master), "history.db")
}

// PIDFilePath returns the path to the lock file `sync --watch` holds for
// its lifetime, colocated with the master base file so two long-running
// watchers against the same base can never start at once.
func (c *Config) PIDFilePath() string {
	if c.Master == "" {
		return ""
	}

	return filepath.Join(filepath.Dir(c.Master), "watch.pid")
}
