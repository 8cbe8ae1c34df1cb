package loaders

import (
	"context"

	"github.com/Conversly/tripshare/internal/queries"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
)

func scanReview(row rowScanner) (*types.Review, error) {
	var r types.Review
	if err := row.Scan(&r.ID, &r.TripID, &r.UserID, &r.Rating, &r.Body, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &r, nil
}

// CreateReview inserts r. A second review by the same user on the same trip
// fails with ErrConflict.
func (c *PostgresClient) CreateReview(ctx context.Context, r *types.Review) error {
	err := c.pool.QueryRow(ctx, queries.InsertReview,
		r.TripID, r.UserID, r.Rating, r.Body,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	return mapError(err)
}

func (c *PostgresClient) GetReview(ctx context.Context, id uuid.UUID) (*types.Review, error) {
	return scanReview(c.pool.QueryRow(ctx, queries.SelectReviewByID, id))
}

func (c *PostgresClient) UpdateReview(ctx context.Context, r *types.Review) error {
	return mapError(c.pool.QueryRow(ctx, queries.UpdateReview, r.ID, r.Rating, r.Body).Scan(&r.UpdatedAt))
}

func (c *PostgresClient) DeleteReview(ctx context.Context, id uuid.UUID) error {
	tag, err := c.pool.Exec(ctx, queries.DeleteReview, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *PostgresClient) ListReviews(ctx context.Context, tripID uuid.UUID, limit, offset int) ([]types.Review, error) {
	rows, err := c.pool.Query(ctx, queries.SelectTripReviews, tripID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	reviews := []types.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *r)
	}
	return reviews, mapError(rows.Err())
}
