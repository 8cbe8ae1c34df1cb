package backfill

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Conversly/tripshare/internal/storage"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type PhotoOptions struct {
	// LegacyRoot is the flat directory legacy photo filenames are relative to.
	LegacyRoot string
	BatchSize  int
	Workers    int
	DryRun     bool
	// Move removes the legacy file once it has been copied.
	Move bool
}

type PhotoReport struct {
	Scanned int
	Copied  int
	Skipped int
	Failed  int
	// Missing lists legacy filenames with no file under the legacy root.
	Missing []string
}

func (r *PhotoReport) Problems() int {
	return r.Failed + len(r.Missing)
}

// Photos moves every photo that still has only a legacy filename into the
// canonical layout and records its storage path and checksum. A missing or
// unreadable source is reported and the photo left for a later run.
func (r *Runner) Photos(ctx context.Context, opts PhotoOptions) (*PhotoReport, error) {
	if opts.LegacyRoot == "" {
		return nil, errors.New("legacy root is required")
	}
	if info, err := os.Stat(opts.LegacyRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("legacy root %q is not a directory", opts.LegacyRoot)
	}
	version, err := r.schema.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	if version < PhotoStorageVersion {
		return nil, fmt.Errorf("photo backfill needs schema version %d or later, database is at %d", PhotoStorageVersion, version)
	}

	batch := batchOrDefault(opts.BatchSize)
	report := &PhotoReport{}
	var mu sync.Mutex

	after := uuid.Nil
	for {
		photos, err := r.store.ListLegacyPhotos(ctx, after, batch)
		if err != nil {
			return report, fmt.Errorf("failed to list legacy photos: %w", err)
		}
		if len(photos) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workersOrDefault(opts.Workers))
		for _, p := range photos {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcome := r.movePhoto(gctx, p, opts)

				mu.Lock()
				defer mu.Unlock()
				report.Scanned++
				switch outcome {
				case outcomeCopied:
					report.Copied++
				case outcomeSkipped:
					report.Skipped++
				case outcomeMissing:
					report.Missing = append(report.Missing, p.Filename)
				default:
					report.Failed++
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return report, err
		}

		after = photos[len(photos)-1].ID
		utils.Zlog.Info("Photo backfill progress",
			zap.Int("scanned", report.Scanned),
			zap.Int("copied", report.Copied),
			zap.Int("skipped", report.Skipped),
			zap.Int("missing", len(report.Missing)),
			zap.Int("failed", report.Failed))
		if len(photos) < batch {
			break
		}
	}
	return report, nil
}

type outcome int

const (
	outcomeCopied outcome = iota
	outcomeSkipped
	outcomeMissing
	outcomeFailed
)

func (r *Runner) movePhoto(ctx context.Context, p types.LegacyPhoto, opts PhotoOptions) outcome {
	log := utils.Zlog.With(zap.String("photo_id", p.ID.String()), zap.String("filename", p.Filename))

	name := filepath.FromSlash(p.Filename)
	if !filepath.IsLocal(name) {
		log.Warn("Legacy filename escapes the legacy root")
		return outcomeFailed
	}
	src := filepath.Join(opts.LegacyRoot, name)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("Legacy photo file is missing")
			return outcomeMissing
		}
		log.Error("Failed to stat legacy photo", zap.Error(err))
		return outcomeFailed
	}

	rel := storage.CanonicalPath(p.UserID, p.TripID, p.ID, legacyExtension(p.Filename))
	if opts.DryRun {
		log.Info("Would copy legacy photo", zap.String("target", rel))
		return outcomeCopied
	}

	res, err := r.files.Import(src, rel, opts.Move)
	if err != nil {
		log.Error("Failed to copy legacy photo", zap.Error(err))
		return outcomeFailed
	}
	if err := r.store.SetPhotoStorage(ctx, p.ID, rel, res.Checksum, res.Size); err != nil {
		log.Error("Failed to record photo storage path", zap.Error(err))
		return outcomeFailed
	}
	if res.Skipped {
		return outcomeSkipped
	}
	return outcomeCopied
}

// legacyExtension maps the legacy file's extension onto the one used for
// its content type, so "IMG_1.JPEG" lands as ".jpg".
func legacyExtension(filename string) string {
	if ext, ok := storage.ExtensionFor(storage.ContentTypeFor(filename)); ok {
		return ext
	}
	return strings.ToLower(filepath.Ext(filename))
}
