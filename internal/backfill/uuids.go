package backfill

import (
	"context"
	"fmt"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/utils"
	"go.uber.org/zap"
)

type UUIDOptions struct {
	BatchSize int
	DryRun    bool
}

// UUIDCount is the number of rows filled, or still missing on a dry run, for
// one table column.
type UUIDCount struct {
	Target string
	Rows   int64
}

type UUIDReport struct {
	DryRun bool
	Counts []UUIDCount
}

func (r *UUIDReport) Total() int64 {
	var n int64
	for _, c := range r.Counts {
		n += c.Rows
	}
	return n
}

// UUIDs assigns UUIDs to every row whose uuid column is still NULL, then fills
// the uuid reference columns from their parents. Row uuids go first so that
// every reference has a parent uuid to copy. The database must be at schema
// version 2: earlier versions lack the columns and later ones have already
// swapped them in as primary keys.
func (r *Runner) UUIDs(ctx context.Context, opts UUIDOptions) (*UUIDReport, error) {
	version, err := r.schema.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != UUIDVersion {
		return nil, fmt.Errorf("uuid backfill needs schema version %d, database is at %d", UUIDVersion, version)
	}

	batch := batchOrDefault(opts.BatchSize)
	report := &UUIDReport{DryRun: opts.DryRun}

	for _, table := range loaders.UUIDTables {
		var n int64
		if opts.DryRun {
			n, err = r.store.CountMissing(ctx, table, "uuid")
		} else {
			n, err = fillAll(ctx, batch, func(ctx context.Context) (int64, error) {
				return r.store.FillUUIDBatch(ctx, table, batch)
			})
		}
		if err != nil {
			return report, fmt.Errorf("%s.uuid: %w", table, err)
		}
		report.Counts = append(report.Counts, UUIDCount{Target: table + ".uuid", Rows: n})
	}

	for _, ref := range loaders.UUIDReferences {
		var n int64
		if opts.DryRun {
			n, err = r.store.CountMissing(ctx, ref.Table, ref.Column)
		} else {
			n, err = fillAll(ctx, batch, func(ctx context.Context) (int64, error) {
				return r.store.FillReferenceBatch(ctx, ref, batch)
			})
		}
		if err != nil {
			return report, fmt.Errorf("%s: %w", ref, err)
		}
		report.Counts = append(report.Counts, UUIDCount{Target: ref.String(), Rows: n})
	}

	return report, nil
}

// fillAll runs fill until a batch comes back short.
func fillAll(ctx context.Context, batch int, fill func(context.Context) (int64, error)) (int64, error) {
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := fill(ctx)
		if err != nil {
			return total, err
		}
		total += n
		if n > 0 {
			utils.Zlog.Debug("Filled uuid batch", zap.Int64("rows", n), zap.Int64("total", total))
		}
		if n < int64(batch) {
			return total, nil
		}
	}
}
