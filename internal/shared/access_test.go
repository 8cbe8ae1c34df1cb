package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTrips struct {
	trips   map[uuid.UUID]*types.Trip
	follows map[[2]uuid.UUID]bool
}

func (s *stubTrips) GetTrip(_ context.Context, id uuid.UUID) (*types.Trip, error) {
	if t, ok := s.trips[id]; ok {
		return t, nil
	}
	return nil, loaders.ErrNotFound
}

func (s *stubTrips) IsFollowing(_ context.Context, follower, followee uuid.UUID) (bool, error) {
	return s.follows[[2]uuid.UUID{follower, followee}], nil
}

func statusOf(err error) int {
	status, _ := utils.StatusOf(err)
	return status
}

func TestVisibleTrip(t *testing.T) {
	owner, fan, stranger := uuid.New(), uuid.New(), uuid.New()
	trip := &types.Trip{ID: uuid.New(), UserID: owner, Visibility: types.VisibilityFollowers}
	store := &stubTrips{
		trips:   map[uuid.UUID]*types.Trip{trip.ID: trip},
		follows: map[[2]uuid.UUID]bool{{fan, owner}: true},
	}
	ctx := context.Background()

	got, err := VisibleTrip(ctx, store, trip.ID, fan)
	require.NoError(t, err)
	assert.Equal(t, trip, got)

	_, err = VisibleTrip(ctx, store, trip.ID, stranger)
	assert.Equal(t, 404, statusOf(err))

	_, err = VisibleTrip(ctx, store, trip.ID, uuid.Nil)
	assert.Equal(t, 404, statusOf(err))

	_, err = VisibleTrip(ctx, store, uuid.New(), owner)
	assert.Equal(t, 404, statusOf(err))
}

func TestOwnedTrip(t *testing.T) {
	owner, fan := uuid.New(), uuid.New()
	trip := &types.Trip{ID: uuid.New(), UserID: owner, Visibility: types.VisibilityPublic}
	store := &stubTrips{trips: map[uuid.UUID]*types.Trip{trip.ID: trip}}

	_, err := OwnedTrip(context.Background(), store, trip.ID, owner)
	require.NoError(t, err)

	_, err = OwnedTrip(context.Background(), store, trip.ID, fan)
	assert.Equal(t, 403, statusOf(err))
}

func TestStoreError(t *testing.T) {
	assert.Nil(t, StoreError(nil, "trip"))
	assert.Equal(t, 404, statusOf(StoreError(loaders.ErrNotFound, "trip")))
	assert.Equal(t, 409, statusOf(StoreError(loaders.ErrConflict, "review")))

	raw := errors.New("db down")
	assert.Equal(t, raw, StoreError(raw, "trip"))
}
