package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwilliams/rsinc/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		RunE:  runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	if cc.Flags.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(cc.Cfg)
	}

	return config.RenderEffective(cc.Cfg, os.Stdout)
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write a config file populated with defaults to the resolved config path
(or --config, if given). Fails if a file already exists there, unless --force
is set.`,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE:        runConfigInit,
	}

	cmd.Flags().Bool("force", false, "overwrite an existing config file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	path := config.ResolveConfigPath(config.ReadEnvOverrides(), config.CLIOverrides{ConfigPath: flagConfigPath}, buildLogger(CLIFlags{}))

	if _, statErr := os.Stat(path); statErr == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.Write(path, config.DefaultConfig()); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	fmt.Fprintf(os.Stdout, "wrote default config to %s\n", path)
	fmt.Fprintln(os.Stdout, "set BASE_L and BASE_R before running sync")

	return nil
}
