package loaders

import (
	"context"
	"time"

	"github.com/Conversly/tripshare/internal/queries"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

// ReplaceItinerary deletes the trip's itinerary and writes days in its place
// in a single transaction. IDs are filled in on days and their items.
func (c *PostgresClient) ReplaceItinerary(ctx context.Context, tripID uuid.UUID, days []types.ItineraryDay) ([]types.ItineraryDay, error) {
	err := c.withTx(ctx, func(tx pgx.Tx) error {
		return replaceItinerary(ctx, tx, tripID, days)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return days, nil
}

func replaceItinerary(ctx context.Context, q Queryer, tripID uuid.UUID, days []types.ItineraryDay) error {
	if _, err := q.Exec(ctx, queries.DeleteItinerary, tripID); err != nil {
		return err
	}
	for i := range days {
		day := &days[i]
		day.TripID = tripID
		if err := q.QueryRow(ctx, queries.InsertItineraryDay,
			tripID, day.DayNumber, day.Date.TimePtr(), day.Title, day.Notes,
		).Scan(&day.ID); err != nil {
			return err
		}
		for j := range day.Items {
			item := &day.Items[j]
			item.DayID = day.ID
			var start *string
			if item.StartTime != "" {
				start = &item.StartTime
			}
			if err := q.QueryRow(ctx, queries.InsertItineraryItem,
				day.ID, item.Position, item.Title, item.Location, start, item.Notes,
			).Scan(&item.ID); err != nil {
				return err
			}
		}
	}
	_, err := q.Exec(ctx, queries.TouchTrip, tripID)
	return err
}

func (c *PostgresClient) GetItinerary(ctx context.Context, tripID uuid.UUID) ([]types.ItineraryDay, error) {
	rows, err := c.pool.Query(ctx, queries.SelectItineraryDays, tripID)
	if err != nil {
		return nil, mapError(err)
	}
	days := []types.ItineraryDay{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			d    types.ItineraryDay
			date *time.Time
		)
		if err := rows.Scan(&d.ID, &d.TripID, &d.DayNumber, &date, &d.Title, &d.Notes); err != nil {
			rows.Close()
			return nil, mapError(err)
		}
		d.Date = types.DateFromTime(date)
		d.Items = []types.ItineraryItem{}
		index[d.ID] = len(days)
		days = append(days, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	rows, err = c.pool.Query(ctx, queries.SelectItineraryItems, tripID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it    types.ItineraryItem
			start *string
		)
		if err := rows.Scan(&it.ID, &it.DayID, &it.Position, &it.Title, &it.Location, &start, &it.Notes); err != nil {
			return nil, mapError(err)
		}
		if start != nil {
			it.StartTime = *start
		}
		if i, ok := index[it.DayID]; ok {
			days[i].Items = append(days[i].Items, it)
		}
	}
	return days, mapError(rows.Err())
}
