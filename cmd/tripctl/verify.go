package main

import (
	"fmt"

	"github.com/Conversly/tripshare/internal/backfill"
	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	var opts backfill.VerifyOptions
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check for rows missing uuids and for missing or corrupt photo files",
		Long: `Reports rows still missing a uuid, stored photos whose file is gone and
stored photos whose checksum no longer matches. Exits non-zero when any of
these are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.runner(cmd.Context(), true)
			if err != nil {
				return err
			}
			report, err := r.Verify(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printVerifyReport(cmd.OutOrStdout(), report)
			if n := report.Problems(); n > 0 {
				return fmt.Errorf("verify found %d problem(s)", n)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.BatchSize, "batch", a.cfg.BatchSize, "photos listed per query")
	cmd.Flags().IntVar(&opts.Workers, "workers", a.cfg.WorkerCount, "files checksummed concurrently")
	return cmd
}
