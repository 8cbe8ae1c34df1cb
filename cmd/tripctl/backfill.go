package main

import (
	"errors"

	"github.com/Conversly/tripshare/internal/backfill"
	"github.com/spf13/cobra"
)

func newBackfillCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Run one-off data backfills",
	}
	cmd.AddCommand(newBackfillUUIDsCmd(a), newBackfillPhotosCmd(a))
	return cmd
}

func newBackfillUUIDsCmd(a *app) *cobra.Command {
	var opts backfill.UUIDOptions
	cmd := &cobra.Command{
		Use:   "uuids",
		Short: "Assign UUIDs to rows created before the key migration",
		Long: `Fills every NULL uuid column, then every uuid reference column, in
batches. The database must be at schema version 2; run "migrate up --to 2"
first, and "migrate up" afterwards to swap the keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.runner(cmd.Context(), false)
			if err != nil {
				return err
			}
			report, err := r.UUIDs(cmd.Context(), opts)
			if report != nil {
				printUUIDReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&opts.BatchSize, "batch", a.cfg.BatchSize, "rows updated per statement")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "only count rows missing a uuid")
	return cmd
}

func newBackfillPhotosCmd(a *app) *cobra.Command {
	var opts backfill.PhotoOptions
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Move legacy photo files into the per-user layout",
		Long: `Copies each photo that only has a legacy filename from the flat legacy
directory to users/<user>/trips/<trip>/<photo><ext> under the photo root and
records its storage path and checksum. Files already in place with the same
checksum are not copied again. Missing source files are reported and left
for a later run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.LegacyRoot == "" {
				return errors.New("--legacy-root is required")
			}
			r, err := a.runner(cmd.Context(), !opts.DryRun)
			if err != nil {
				return err
			}
			report, err := r.Photos(cmd.Context(), opts)
			if report != nil {
				printPhotoReport(cmd.OutOrStdout(), report, opts.DryRun)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&opts.LegacyRoot, "legacy-root", "", "directory holding the legacy photo files")
	cmd.Flags().IntVar(&opts.BatchSize, "batch", a.cfg.BatchSize, "photos listed per query")
	cmd.Flags().IntVar(&opts.Workers, "workers", a.cfg.WorkerCount, "files copied concurrently")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would be copied without writing")
	cmd.Flags().BoolVar(&opts.Move, "move", false, "remove each legacy file once it is copied")
	return cmd
}
