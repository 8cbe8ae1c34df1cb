package loaders

import (
	"context"
	"fmt"

	"github.com/Conversly/tripshare/internal/queries"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

// UUIDTables are the tables that gained a uuid column in schema version 2.
var UUIDTables = []string{
	"users", "trips", "itinerary_days", "itinerary_items", "photos", "reviews",
}

// UUIDReference describes a uuid reference column added next to an integer
// foreign key in schema version 2: Table.Column is filled from Parent.uuid
// where Table.Key = Parent.id.
type UUIDReference struct {
	Table  string
	Column string
	Key    string
	Parent string
}

func (r UUIDReference) String() string {
	return r.Table + "." + r.Column
}

var UUIDReferences = []UUIDReference{
	{Table: "trips", Column: "user_uuid", Key: "user_id", Parent: "users"},
	{Table: "itinerary_days", Column: "trip_uuid", Key: "trip_id", Parent: "trips"},
	{Table: "itinerary_items", Column: "day_uuid", Key: "day_id", Parent: "itinerary_days"},
	{Table: "photos", Column: "trip_uuid", Key: "trip_id", Parent: "trips"},
	{Table: "photos", Column: "user_uuid", Key: "user_id", Parent: "users"},
	{Table: "reviews", Column: "trip_uuid", Key: "trip_id", Parent: "trips"},
	{Table: "reviews", Column: "user_uuid", Key: "user_id", Parent: "users"},
	{Table: "likes", Column: "trip_uuid", Key: "trip_id", Parent: "trips"},
	{Table: "likes", Column: "user_uuid", Key: "user_id", Parent: "users"},
	{Table: "follows", Column: "follower_uuid", Key: "follower_id", Parent: "users"},
	{Table: "follows", Column: "followee_uuid", Key: "followee_id", Parent: "users"},
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// FillUUIDBatch assigns fresh UUIDs to at most limit rows of table whose uuid
// is NULL and returns how many rows were updated.
func (c *PostgresClient) FillUUIDBatch(ctx context.Context, table string, limit int) (int64, error) {
	t := ident(table)
	sql := fmt.Sprintf(
		`UPDATE %[1]s SET "uuid" = gen_random_uuid()
		 WHERE ctid = ANY(ARRAY(SELECT ctid FROM %[1]s WHERE "uuid" IS NULL LIMIT $1))`,
		t,
	)
	tag, err := c.pool.Exec(ctx, sql, limit)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

// FillReferenceBatch copies parent UUIDs into at most limit rows of the
// reference column. Rows whose parent has no uuid yet are skipped.
func (c *PostgresClient) FillReferenceBatch(ctx context.Context, ref UUIDReference, limit int) (int64, error) {
	sql := fmt.Sprintf(
		`UPDATE %[1]s c SET %[2]s = p."uuid"
		 FROM %[4]s p
		 WHERE c.%[3]s = p."id"
		   AND c.ctid = ANY(ARRAY(
		       SELECT c2.ctid FROM %[1]s c2 JOIN %[4]s p2 ON c2.%[3]s = p2."id"
		       WHERE c2.%[2]s IS NULL AND p2."uuid" IS NOT NULL
		       LIMIT $1))`,
		ident(ref.Table), ident(ref.Column), ident(ref.Key), ident(ref.Parent),
	)
	tag, err := c.pool.Exec(ctx, sql, limit)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

// CountMissing counts rows of table where column is NULL.
func (c *PostgresClient) CountMissing(ctx context.Context, table, column string) (int64, error) {
	var n int64
	sql := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s IS NULL`, ident(table), ident(column))
	if err := c.pool.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

// ListLegacyPhotos pages through photos still in the flat legacy layout,
// ordered by id and starting after the given id.
func (c *PostgresClient) ListLegacyPhotos(ctx context.Context, after uuid.UUID, limit int) ([]types.LegacyPhoto, error) {
	rows, err := c.pool.Query(ctx, queries.SelectLegacyPhotos, after, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	photos := []types.LegacyPhoto{}
	for rows.Next() {
		var p types.LegacyPhoto
		if err := rows.Scan(&p.ID, &p.TripID, &p.UserID, &p.Filename); err != nil {
			return nil, mapError(err)
		}
		photos = append(photos, p)
	}
	return photos, mapError(rows.Err())
}

// SetPhotoStorage records where a photo's bytes now live and marks it ready.
func (c *PostgresClient) SetPhotoStorage(ctx context.Context, id uuid.UUID, storagePath, checksum string, size int64) error {
	tag, err := c.pool.Exec(ctx, queries.SetPhotoStorage, id, storagePath, checksum, size)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStoredPhotos pages through photos that have a storage path.
func (c *PostgresClient) ListStoredPhotos(ctx context.Context, after uuid.UUID, limit int) ([]types.Photo, error) {
	rows, err := c.pool.Query(ctx, queries.SelectStoredPhotos, after, limit)
	if err != nil {
		return nil, mapError(err)
	}
	return collectPhotos(rows)
}

// CountLegacyPhotos counts photos not yet moved out of the legacy layout.
func (c *PostgresClient) CountLegacyPhotos(ctx context.Context) (int64, error) {
	var n int64
	err := c.pool.QueryRow(ctx,
		`SELECT count(*) FROM photos WHERE storage_path IS NULL AND filename IS NOT NULL`,
	).Scan(&n)
	return n, mapError(err)
}

// SeedUser inserts a user together with its trips and their itineraries in
// one transaction.
func (c *PostgresClient) SeedUser(ctx context.Context, u *types.User, trips []types.Trip, itineraries [][]types.ItineraryDay) error {
	return mapError(c.withTx(ctx, func(tx pgx.Tx) error {
		if err := createUser(ctx, tx, u); err != nil {
			return err
		}
		for i := range trips {
			trips[i].UserID = u.ID
			if err := createTrip(ctx, tx, &trips[i]); err != nil {
				return err
			}
			if i < len(itineraries) && len(itineraries[i]) > 0 {
				if err := replaceItinerary(ctx, tx, trips[i].ID, itineraries[i]); err != nil {
					return err
				}
			}
		}
		return nil
	}))
}
