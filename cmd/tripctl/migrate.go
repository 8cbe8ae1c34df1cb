package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect and upgrade the database schema",
	}

	var to int
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending schema versions in one transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, sch, err := a.connect(ctx)
			if err != nil {
				return err
			}
			before, err := sch.Version(ctx)
			if err != nil {
				return err
			}
			if err := sch.UpgradeTo(ctx, to); err != nil {
				return fmt.Errorf("upgrade failed, nothing was applied: %w", err)
			}
			after, err := sch.Version(ctx)
			if err != nil {
				return err
			}
			if after == before {
				fmt.Fprintf(cmd.OutOrStdout(), "schema already at version %d\n", after)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema upgraded from version %d to %d\n", before, after)
			return nil
		},
	}
	up.Flags().IntVar(&to, "to", -1, "stop after this version (default: latest)")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the database and repository schema versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, sch, err := a.connect(ctx)
			if err != nil {
				return err
			}
			current, err := sch.Version(ctx)
			if err != nil {
				return err
			}
			latest, err := sch.Latest()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database: %d\nrepository: %d\n", current, latest)
			return nil
		},
	}

	pending := &cobra.Command{
		Use:   "pending",
		Short: "List schema versions not yet applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, sch, err := a.connect(ctx)
			if err != nil {
				return err
			}
			versions, err := sch.Pending(ctx)
			if err != nil {
				return err
			}
			printPending(cmd.OutOrStdout(), versions)
			return nil
		},
	}

	cmd.AddCommand(up, version, pending)
	return cmd
}
