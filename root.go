package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwilliams/rsinc/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// CLIFlags bundles the persistent flags every command reads, passed by
// value so buildLogger and friends stay testable without touching package
// globals.
type CLIFlags struct {
	ConfigPath string
	JSON       bool
	Verbose    bool
	Debug      bool
	Quiet      bool
}

// Global persistent flags, bound in newRootCmd() and copied into a
// CLIFlags value in PersistentPreRunE.
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagDebug      bool
	flagQuiet      bool
)

// skipConfigAnnotation marks commands that handle config loading
// themselves, bypassing the automatic resolution in PersistentPreRunE.
const skipConfigAnnotation = "skipConfig"

// CLIContext bundles the resolved config, logger, and flags a command
// needs. Built once in PersistentPreRunE and threaded through the
// command's context.
type CLIContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Flags  CLIFlags
}

type cliContextKey struct{}

// cliContextFrom extracts the CLIContext from the command's context.
// Returns nil if none was set.
func cliContextFrom(ctx context.Context) *CLIContext {
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok {
		return nil
	}

	return cc
}

// mustCLIContext extracts the CLIContext or panics with an actionable
// message. RunE handlers under the normal command tree can always rely on
// PersistentPreRunE having populated it first.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("BUG: CLIContext not found in context — PersistentPreRunE did not run")
	}

	return cc
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rsinc",
		Short: "Two-way file tree synchronizer",
		Long: `rsinc keeps a local tree and a remote tree in sync via an external
file-operations agent (e.g. rclone), reconciling changes against a
persisted snapshot of the last successful run.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main() reports
		// errors itself via exitOnError.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				return nil
			}

			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	// config_path is an alias for --config: spec.md §6 names both, and the
	// agent's own --config flag (passed through AgentFlags) is easy to
	// confuse with rsinc's own config file flag, so both spellings resolve
	// to the same value here.
	cmd.PersistentFlags().StringVar(&flagConfigPath, "config_path", "", "alias for --config")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show detailed output")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.MarkFlagsMutuallyExclusive("verbose", "debug", "quiet")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newReloadCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// and stores it, a logger, and the parsed flags in the command's context.
func loadConfig(cmd *cobra.Command) error {
	flags := CLIFlags{
		ConfigPath: flagConfigPath,
		JSON:       flagJSON,
		Verbose:    flagVerbose,
		Debug:      flagDebug,
		Quiet:      flagQuiet,
	}

	logger := buildLogger(flags)

	cli := config.CLIOverrides{ConfigPath: flags.ConfigPath}
	env := config.ReadEnvOverrides()

	logger.Debug("resolving config",
		slog.String("config_path", cli.ConfigPath),
		slog.String("env_config", env.ConfigPath),
	)

	cfg, err := config.Resolve(env, cli, logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cc := &CLIContext{Cfg: cfg, Logger: logger, Flags: flags}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))

	return nil
}

// buildLogger creates an slog.Logger per flags. CLI flags are mutually
// exclusive (enforced by Cobra) and always determine the level; rsinc's
// config file carries no log-level key (spec.md §6).
func buildLogger(flags CLIFlags) *slog.Logger {
	level := slog.LevelWarn

	switch {
	case flags.Debug:
		level = slog.LevelDebug
	case flags.Verbose:
		level = slog.LevelInfo
	case flags.Quiet:
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
