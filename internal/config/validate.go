package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.BaseL == "" {
		errs = append(errs, errors.New("BASE_L: must not be empty"))
	}

	errs = append(errs, validateBaseR(cfg.BaseR)...)

	if cfg.HashName == "" {
		errs = append(errs, errors.New("HASH_NAME: must not be empty"))
	}

	if cfg.Master == "" {
		errs = append(errs, errors.New("MASTER: must not be empty"))
	}

	if cfg.TempFile == "" {
		errs = append(errs, errors.New("TEMP_FILE: must not be empty"))
	}

	if cfg.AgentBinary == "" {
		errs = append(errs, errors.New("AGENT_BINARY: must not be empty"))
	}

	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("WORKERS: must be >= 1, got %d", cfg.Workers))
	}

	return errors.Join(errs...)
}

// validateBaseR enforces the agent's colon-suffixed remote addressing
// convention (rsinc/config.py writes BASE_R as "remote:path").
func validateBaseR(baseR string) []error {
	if baseR == "" {
		return []error{errors.New("BASE_R: must not be empty")}
	}

	if !strings.Contains(baseR, ":") {
		return []error{fmt.Errorf("BASE_R: must contain a remote-name separator \":\", got %q", baseR)}
	}

	return nil
}
