package loaders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Conversly/tripshare/internal/queries"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

func scanTrip(row rowScanner) (*types.Trip, error) {
	var (
		t          types.Trip
		start, end *time.Time
		visibility string
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Destination,
		&start, &end, &visibility, &t.Tags, &t.CoverPhotoID, &t.LikeCount,
		&t.ReviewCount, &t.AverageRating,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	t.StartDate = types.DateFromTime(start)
	t.EndDate = types.DateFromTime(end)
	t.Visibility = types.Visibility(visibility)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func collectTrips(rows pgx.Rows) ([]types.Trip, error) {
	defer rows.Close()
	trips := []types.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, mapError(rows.Err())
}

// CreateTrip inserts t and fills in its generated fields.
func (c *PostgresClient) CreateTrip(ctx context.Context, t *types.Trip) error {
	return createTrip(ctx, c.pool, t)
}

func createTrip(ctx context.Context, q Queryer, t *types.Trip) error {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	err := q.QueryRow(ctx, queries.InsertTrip,
		t.UserID, t.Title, t.Description, t.Destination,
		t.StartDate.TimePtr(), t.EndDate.TimePtr(), string(t.Visibility), t.Tags,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return mapError(err)
}

func (c *PostgresClient) GetTrip(ctx context.Context, id uuid.UUID) (*types.Trip, error) {
	return scanTrip(c.pool.QueryRow(ctx, queries.SelectTripByID, id))
}

// UpdateTrip writes the editable fields of t.
func (c *PostgresClient) UpdateTrip(ctx context.Context, t *types.Trip) error {
	err := c.pool.QueryRow(ctx, queries.UpdateTrip,
		t.ID, t.Title, t.Description, t.Destination,
		t.StartDate.TimePtr(), t.EndDate.TimePtr(), string(t.Visibility), t.Tags,
	).Scan(&t.UpdatedAt)
	return mapError(err)
}

func (c *PostgresClient) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	tag, err := c.pool.Exec(ctx, queries.DeleteTrip, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *PostgresClient) SetCoverPhoto(ctx context.Context, tripID uuid.UUID, photoID *uuid.UUID) error {
	tag, err := c.pool.Exec(ctx, queries.SetCoverPhoto, tripID, photoID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTrips returns trips matching f, newest first.
func (c *PostgresClient) ListTrips(ctx context.Context, f types.TripFilter) ([]types.Trip, error) {
	sql, args := buildTripListQuery(f)
	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return collectTrips(rows)
}

func buildTripListQuery(f types.TripFilter) (string, []interface{}) {
	visibilities := make([]string, 0, len(f.Visibilities))
	for _, v := range f.Visibilities {
		visibilities = append(visibilities, string(v))
	}

	args := []interface{}{visibilities}
	where := []string{"t.visibility = ANY($1)"}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.UserID != nil {
		add("t.user_id = $%d", *f.UserID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		add(`t.title COLLATE "C" ILIKE $%d`, "%"+EscapeLike(q)+"%")
	}
	if d := strings.TrimSpace(f.Destination); d != "" {
		add("t.destination ILIKE $%d", "%"+EscapeLike(d)+"%")
	}
	if f.Tag != "" {
		add("$%d = ANY(t.tags)", f.Tag)
	}

	args = append(args, f.Limit, f.Offset)
	sql := "SELECT " + queries.TripColumns + queries.TripFrom +
		"\nWHERE " + strings.Join(where, " AND ") +
		fmt.Sprintf("\nORDER BY t.created_at DESC, t.id\nLIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return sql, args
}

// Feed returns trips of users that userID follows, newest first.
func (c *PostgresClient) Feed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]types.Trip, error) {
	rows, err := c.pool.Query(ctx, queries.SelectFeed, userID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	return collectTrips(rows)
}
