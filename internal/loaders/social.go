package loaders

import (
	"context"

	"github.com/Conversly/tripshare/internal/queries"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

// Like records that userID likes tripID and returns the trip's like count.
// Liking twice is a no-op.
func (c *PostgresClient) Like(ctx context.Context, userID, tripID uuid.UUID) (int, error) {
	return c.toggleLike(ctx, queries.InsertLike, queries.IncrementLikeCount, userID, tripID)
}

// Unlike removes the like, if any, and returns the trip's like count.
func (c *PostgresClient) Unlike(ctx context.Context, userID, tripID uuid.UUID) (int, error) {
	return c.toggleLike(ctx, queries.DeleteLike, queries.DecrementLikeCount, userID, tripID)
}

func (c *PostgresClient) toggleLike(ctx context.Context, write, adjust string, userID, tripID uuid.UUID) (int, error) {
	var count int
	err := c.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, write, userID, tripID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return tx.QueryRow(ctx, queries.SelectLikeCount, tripID).Scan(&count)
		}
		return tx.QueryRow(ctx, adjust, tripID).Scan(&count)
	})
	return count, mapError(err)
}

func (c *PostgresClient) ListLikers(ctx context.Context, tripID uuid.UUID, limit, offset int) ([]types.User, error) {
	rows, err := c.pool.Query(ctx, queries.SelectTripLikers, tripID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	return collectUsers(rows)
}

// Follow is idempotent. Following oneself violates a check constraint and
// fails with ErrConflict.
func (c *PostgresClient) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	_, err := c.pool.Exec(ctx, queries.InsertFollow, followerID, followeeID)
	return mapError(err)
}

func (c *PostgresClient) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	_, err := c.pool.Exec(ctx, queries.DeleteFollow, followerID, followeeID)
	return mapError(err)
}

func (c *PostgresClient) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	if followerID == uuid.Nil {
		return false, nil
	}
	var ok bool
	err := c.pool.QueryRow(ctx, queries.SelectIsFollowing, followerID, followeeID).Scan(&ok)
	return ok, mapError(err)
}

func (c *PostgresClient) ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]types.User, error) {
	rows, err := c.pool.Query(ctx, queries.SelectFollowers, userID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	return collectUsers(rows)
}

func (c *PostgresClient) ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]types.User, error) {
	rows, err := c.pool.Query(ctx, queries.SelectFollowing, userID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	return collectUsers(rows)
}
