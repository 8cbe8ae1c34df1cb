package shared

import (
	"context"
	"errors"

	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/google/uuid"
)

// TripReader is what access checks need from the store.
type TripReader interface {
	GetTrip(ctx context.Context, id uuid.UUID) (*types.Trip, error)
	IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
}

// VisibleTrip loads a trip the viewer may see. Trips the viewer may not see
// are reported as missing so their existence is not revealed.
func VisibleTrip(ctx context.Context, r TripReader, tripID, viewer uuid.UUID) (*types.Trip, error) {
	trip, err := r.GetTrip(ctx, tripID)
	if err != nil {
		return nil, StoreError(err, "trip")
	}

	follows := false
	if trip.Visibility == types.VisibilityFollowers && viewer != uuid.Nil && viewer != trip.UserID {
		if follows, err = r.IsFollowing(ctx, viewer, trip.UserID); err != nil {
			return nil, err
		}
	}
	if !types.CanView(trip, viewer, follows) {
		return nil, utils.NotFound("trip not found")
	}
	return trip, nil
}

// OwnedTrip loads a trip and requires that user owns it.
func OwnedTrip(ctx context.Context, r TripReader, tripID, user uuid.UUID) (*types.Trip, error) {
	trip, err := VisibleTrip(ctx, r, tripID, user)
	if err != nil {
		return nil, err
	}
	if trip.UserID != user {
		return nil, utils.Forbidden("only the trip owner can do this")
	}
	return trip, nil
}

// StoreError converts store sentinel errors into API errors for what.
func StoreError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, loaders.ErrNotFound):
		return utils.NotFound("%s not found", what)
	case errors.Is(err, loaders.ErrConflict):
		return utils.Conflict("%s already exists", what)
	}
	return err
}
