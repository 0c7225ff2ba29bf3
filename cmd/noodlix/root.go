package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/noodlix/pkg/noodlix"
	"github.com/arthur-debert/noodlix/pkg/noodlix/config"
)

// newRootCommand builds the command tree
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "noodlix",
		Short: "A UNIX-like shell over a persisted virtual filesystem",
		Long: `noodlix runs the Bashimi shell against an in-process virtual filesystem.
Users, permissions, aliases and files live in a snapshot under --data-dir;
without it everything is kept in memory for the length of the run.

Settings are read from NOODLIX_* environment variables; flags win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("data-dir", "", "Directory holding the filesystem snapshot and user table (default: in memory)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().Bool("compress", false, "Store snapshots zstd-compressed")

	cmd.AddCommand(newShellCommand())
	cmd.AddCommand(newExecCommand())
	cmd.AddCommand(newSnapshotCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies persistent flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("compress") {
		cfg.Compress, _ = flags.GetBool("compress")
	}
	return cfg, nil
}

// openSystem builds the system the subcommands operate on
func openSystem(ctx context.Context, cmd *cobra.Command) (*noodlix.System, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := noodlix.ParseLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	sys, err := noodlix.New(ctx, cfg, noodlix.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to start noodlix: %w", err)
	}
	return sys, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Print the version number of noodlix`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "noodlix version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
