package backfill

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/storage"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type VerifyOptions struct {
	BatchSize int
	Workers   int
}

type VerifyReport struct {
	SchemaVersion int
	// MissingUUIDs counts rows per table column still without a uuid. Only
	// filled at schema version 2.
	MissingUUIDs map[string]int64
	PhotosChecked int
	MissingFiles  []uuid.UUID
	Mismatches    []uuid.UUID
	// LegacyPhotos counts photos not yet moved by the photo backfill. They are
	// reported but are not a problem on their own.
	LegacyPhotos int64
}

// Problems is the number of findings that should fail a verify run.
func (r *VerifyReport) Problems() int {
	n := len(r.MissingFiles) + len(r.Mismatches)
	for _, missing := range r.MissingUUIDs {
		if missing > 0 {
			n++
		}
	}
	return n
}

// Verify checks that the backfills left the database consistent: no row
// lacks a uuid and every stored photo exists on disk with the recorded
// checksum.
func (r *Runner) Verify(ctx context.Context, opts VerifyOptions) (*VerifyReport, error) {
	version, err := r.schema.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	report := &VerifyReport{SchemaVersion: version, MissingUUIDs: map[string]int64{}}

	if version == UUIDVersion {
		if err := r.verifyUUIDs(ctx, report); err != nil {
			return report, err
		}
	}
	if version >= PhotoStorageVersion {
		if err := r.verifyPhotos(ctx, opts, report); err != nil {
			return report, err
		}
		if report.LegacyPhotos, err = r.store.CountLegacyPhotos(ctx); err != nil {
			return report, fmt.Errorf("failed to count legacy photos: %w", err)
		}
	}
	return report, nil
}

func (r *Runner) verifyUUIDs(ctx context.Context, report *VerifyReport) error {
	for _, table := range loaders.UUIDTables {
		n, err := r.store.CountMissing(ctx, table, "uuid")
		if err != nil {
			return fmt.Errorf("%s.uuid: %w", table, err)
		}
		report.MissingUUIDs[table+".uuid"] = n
	}
	for _, ref := range loaders.UUIDReferences {
		n, err := r.store.CountMissing(ctx, ref.Table, ref.Column)
		if err != nil {
			return fmt.Errorf("%s: %w", ref, err)
		}
		report.MissingUUIDs[ref.String()] = n
	}
	return nil
}

func (r *Runner) verifyPhotos(ctx context.Context, opts VerifyOptions, report *VerifyReport) error {
	batch := batchOrDefault(opts.BatchSize)
	var mu sync.Mutex

	after := uuid.Nil
	for {
		photos, err := r.store.ListStoredPhotos(ctx, after, batch)
		if err != nil {
			return fmt.Errorf("failed to list stored photos: %w", err)
		}
		if len(photos) == 0 {
			return nil
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workersOrDefault(opts.Workers))
		for _, p := range photos {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				missing, mismatch := r.checkPhoto(p.ID, p.StoragePath, p.Checksum)

				mu.Lock()
				defer mu.Unlock()
				report.PhotosChecked++
				if missing {
					report.MissingFiles = append(report.MissingFiles, p.ID)
				}
				if mismatch {
					report.Mismatches = append(report.Mismatches, p.ID)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		after = photos[len(photos)-1].ID
		if len(photos) < batch {
			return nil
		}
	}
}

// checkPhoto reports whether the stored file is missing or differs from the
// recorded checksum. An unreadable file counts as missing.
func (r *Runner) checkPhoto(id uuid.UUID, rel, want string) (missing, mismatch bool) {
	log := utils.Zlog.With(zap.String("photo_id", id.String()), zap.String("path", rel))

	abs, err := r.files.Abs(rel)
	if err != nil {
		log.Warn("Stored photo path is invalid", zap.Error(err))
		return true, false
	}
	sum, _, err := storage.Checksum(abs)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("Failed to read stored photo", zap.Error(err))
		}
		return true, false
	}
	if want != "" && sum != want {
		log.Warn("Stored photo checksum mismatch", zap.String("want", want), zap.String("got", sum))
		return false, true
	}
	return false, false
}
