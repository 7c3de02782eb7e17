package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// CLIOverrides holds values taken directly from persistent CLI flags. These
// are the highest-priority layer: CLI flags > env > config file > defaults.
type CLIOverrides struct {
	ConfigPath  string
	AgentBinary string
}

// Load reads and parses the JSON config file, validates it, and returns the
// resulting Config. Unlike the four-layer resolution in Resolve, Load alone
// performs no env/CLI merging — it is the single authoritative decode step.
func Load(path string, logger *slog.Logger) (*Config, error) {
	logger.Debug("loading config file", "path", path)

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger.Debug("config file parsed successfully",
		"path", path,
		"base_l", cfg.BaseL,
		"base_r", cfg.BaseR,
	)

	return cfg, nil
}

// LoadOrDefault reads the config file if it exists, otherwise returns a
// Config populated with defaults (BASE_L/BASE_R still empty — callers that
// need them set must fail validation downstream, matching rsinc's
// interactive first-run config_cli behavior rather than silently using "").
func LoadOrDefault(path string, logger *slog.Logger) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("config file not found, using defaults", "path", path)

		return DefaultConfig(), nil
	}

	return Load(path, logger)
}

// Resolve loads configuration and applies the four-layer override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) (*Config, error) {
	cfgPath := ResolveConfigPath(env, cli, logger)

	cfg, err := LoadOrDefault(cfgPath, logger)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if env.AgentBinary != "" {
		cfg.AgentBinary = env.AgentBinary
		logger.Debug("env override applied", "agent_binary", cfg.AgentBinary)
	}

	if cli.AgentBinary != "" {
		cfg.AgentBinary = cli.AgentBinary
		logger.Debug("CLI override applied", "agent_binary", cfg.AgentBinary)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// ResolveConfigPath determines the config file path using the three-layer
// priority: CLI flag > environment variable > platform default.
func ResolveConfigPath(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) string {
	cfgPath := DefaultConfigPath()
	source := "default"

	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
		source = "env"
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
		source = "cli"
	}

	logger.Debug("config path resolved", "path", cfgPath, "source", source)

	return cfgPath
}
