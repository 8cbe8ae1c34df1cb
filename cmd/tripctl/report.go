package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Conversly/tripshare/internal/backfill"
)

func printPending(w io.Writer, versions []int) {
	if len(versions) == 0 {
		fmt.Fprintln(w, "schema is up to date")
		return
	}
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = fmt.Sprint(v)
	}
	fmt.Fprintf(w, "%d pending: %s\n", len(versions), strings.Join(parts, ", "))
}

func printUUIDReport(w io.Writer, r *backfill.UUIDReport) {
	verb := "filled"
	if r.DryRun {
		verb = "missing"
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "COLUMN\t%s\n", strings.ToUpper(verb))
	for _, c := range r.Counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Target, c.Rows)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d row(s) %s\n", r.Total(), verb)
}

func printPhotoReport(w io.Writer, r *backfill.PhotoReport, dryRun bool) {
	copied := "copied"
	if dryRun {
		copied = "to copy"
	}
	fmt.Fprintf(w, "scanned %d, %s %d, already in place %d, missing %d, failed %d\n",
		r.Scanned, copied, r.Copied, r.Skipped, len(r.Missing), r.Failed)
	for _, name := range r.Missing {
		fmt.Fprintf(w, "missing: %s\n", name)
	}
}

func printVerifyReport(w io.Writer, r *backfill.VerifyReport) {
	fmt.Fprintf(w, "schema version %d\n", r.SchemaVersion)

	columns := make([]string, 0, len(r.MissingUUIDs))
	for col, n := range r.MissingUUIDs {
		if n > 0 {
			columns = append(columns, col)
		}
	}
	sort.Strings(columns)
	for _, col := range columns {
		fmt.Fprintf(w, "missing uuids: %s: %d\n", col, r.MissingUUIDs[col])
	}

	fmt.Fprintf(w, "photos checked %d, missing files %d, checksum mismatches %d, not yet moved %d\n",
		r.PhotosChecked, len(r.MissingFiles), len(r.Mismatches), r.LegacyPhotos)
	for _, id := range r.MissingFiles {
		fmt.Fprintf(w, "missing file: %s\n", id)
	}
	for _, id := range r.Mismatches {
		fmt.Fprintf(w, "checksum mismatch: %s\n", id)
	}
}

func printSeedReport(w io.Writer, r *backfill.SeedReport) {
	fmt.Fprintf(w, "seeded %d user(s) with %d trip(s)\n", r.Users, r.Trips)
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "skipped existing: %s\n", strings.Join(r.Skipped, ", "))
	}
}
