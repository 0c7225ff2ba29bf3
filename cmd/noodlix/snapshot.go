package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export or import the filesystem snapshot",
		Long:  "Export the stored filesystem as JSON, or replace it with a previously exported one",
	}

	cmd.AddCommand(newSnapshotExportCommand())
	cmd.AddCommand(newSnapshotImportCommand())

	return cmd
}

func newSnapshotExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filesystem snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sys, err := openSystem(ctx, cmd)
			if err != nil {
				return err
			}

			data, err := sys.Tree().Serialize()
			if err != nil {
				return fmt.Errorf("failed to serialize filesystem: %w", err)
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write snapshot file %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d nodes to %s\n", sys.Tree().Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func newSnapshotImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [snapshot-file]",
		Short: "Replace the filesystem with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read snapshot file %s: %w", args[0], err)
			}

			sys, err := openSystem(ctx, cmd)
			if err != nil {
				return err
			}
			if err := sys.Tree().Load(data); err != nil {
				return fmt.Errorf("invalid snapshot: %w", err)
			}
			if err := sys.Close(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d nodes\n", sys.Tree().Len())
			return nil
		},
	}
}
