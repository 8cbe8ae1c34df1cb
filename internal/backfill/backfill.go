// Package backfill holds the one-off data maintenance jobs run by tripctl:
// assigning UUIDs to rows created before schema version 2, moving legacy
// photo files into the canonical layout, verifying the result and seeding
// fixtures.
package backfill

import (
	"context"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/storage"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
)

// Store is the subset of the database client the jobs need.
type Store interface {
	FillUUIDBatch(ctx context.Context, table string, limit int) (int64, error)
	FillReferenceBatch(ctx context.Context, ref loaders.UUIDReference, limit int) (int64, error)
	CountMissing(ctx context.Context, table, column string) (int64, error)
	ListLegacyPhotos(ctx context.Context, after uuid.UUID, limit int) ([]types.LegacyPhoto, error)
	SetPhotoStorage(ctx context.Context, id uuid.UUID, storagePath, checksum string, size int64) error
	ListStoredPhotos(ctx context.Context, after uuid.UUID, limit int) ([]types.Photo, error)
	CountLegacyPhotos(ctx context.Context) (int64, error)
	SeedUser(ctx context.Context, u *types.User, trips []types.Trip, itineraries [][]types.ItineraryDay) error
}

// Versioner reports the schema version the database is at.
type Versioner interface {
	Version(ctx context.Context) (int, error)
}

const (
	// UUIDVersion is the schema version whose uuid columns the uuid job fills.
	UUIDVersion = 2
	// PhotoStorageVersion is the first schema version with photos.storage_path.
	PhotoStorageVersion = 5

	defaultBatchSize = 100
	defaultWorkers   = 4
)

type Runner struct {
	store  Store
	schema Versioner
	files  *storage.PhotoStore
}

func NewRunner(store Store, schema Versioner, files *storage.PhotoStore) *Runner {
	return &Runner{store: store, schema: schema, files: files}
}

func batchOrDefault(n int) int {
	if n <= 0 {
		return defaultBatchSize
	}
	return n
}

func workersOrDefault(n int) int {
	if n <= 0 {
		return defaultWorkers
	}
	return n
}
