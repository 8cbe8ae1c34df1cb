package loaders

import (
	"context"

	"github.com/Conversly/tripshare/internal/queries"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

func scanPhoto(row rowScanner) (*types.Photo, error) {
	var (
		p      types.Photo
		status string
	)
	if err := row.Scan(
		&p.ID, &p.TripID, &p.UserID, &p.Caption, &p.ContentType, &p.SizeBytes,
		&p.Checksum, &p.StoragePath, &status, &p.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	p.Status = types.PhotoStatus(status)
	return &p, nil
}

func collectPhotos(rows pgx.Rows) ([]types.Photo, error) {
	defer rows.Close()
	photos := []types.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, mapError(rows.Err())
}

// CreatePhoto inserts p in the pending state.
func (c *PostgresClient) CreatePhoto(ctx context.Context, p *types.Photo) error {
	p.Status = types.PhotoPending
	err := c.pool.QueryRow(ctx, queries.InsertPhoto,
		p.TripID, p.UserID, p.Caption, p.ContentType, p.SizeBytes,
	).Scan(&p.ID, &p.CreatedAt)
	return mapError(err)
}

func (c *PostgresClient) GetPhoto(ctx context.Context, id uuid.UUID) (*types.Photo, error) {
	return scanPhoto(c.pool.QueryRow(ctx, queries.SelectPhotoByID, id))
}

// ListPhotos returns the trip's ready photos, plus any photo still being
// processed when viewer uploaded it.
func (c *PostgresClient) ListPhotos(ctx context.Context, tripID, viewer uuid.UUID) ([]types.Photo, error) {
	rows, err := c.pool.Query(ctx, queries.SelectTripPhotos, tripID, viewer)
	if err != nil {
		return nil, mapError(err)
	}
	return collectPhotos(rows)
}

func (c *PostgresClient) UpdatePhotoStatus(ctx context.Context, id uuid.UUID, status types.PhotoStatus, storagePath, checksum string) error {
	tag, err := c.pool.Exec(ctx, queries.UpdatePhotoStatus, id, string(status), storagePath, checksum)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePhoto removes the row and returns the storage path it pointed to.
func (c *PostgresClient) DeletePhoto(ctx context.Context, id uuid.UUID) (string, error) {
	var path string
	if err := c.pool.QueryRow(ctx, queries.DeletePhoto, id).Scan(&path); err != nil {
		return "", mapError(err)
	}
	return path, nil
}
