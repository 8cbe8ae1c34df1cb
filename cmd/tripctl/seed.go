package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Conversly/tripshare/internal/backfill"
	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, trips and itineraries from a YAML fixture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			fixtures, err := backfill.ParseSeed(f)
			if err != nil {
				return err
			}
			r, err := a.runner(cmd.Context(), false)
			if err != nil {
				return err
			}
			report, err := r.Seed(cmd.Context(), fixtures, backfill.SeedOptions{})
			if report != nil {
				printSeedReport(cmd.OutOrStdout(), report)
			}
			if err != nil {
				return fmt.Errorf("seeding %s: %w", file, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file to load")
	return cmd
}
